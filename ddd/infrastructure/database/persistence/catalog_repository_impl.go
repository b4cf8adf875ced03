package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/repo"
	"storefront-service/ddd/infrastructure/database/convertor"
	"storefront-service/ddd/infrastructure/database/dao"
)

// productRepositoryImpl 商品仓储实现
type productRepositoryImpl struct {
	productDao *dao.ProductDAO
	convertor  *convertor.CatalogConvertor
}

// NewProductRepository 创建商品仓储实现
func NewProductRepository(db *gorm.DB) repo.ProductRepository {
	return &productRepositoryImpl{
		productDao: dao.NewProductDAO(db),
		convertor:  convertor.NewCatalogConvertor(),
	}
}

func (r *productRepositoryImpl) Create(ctx context.Context, product *entity.ProductEntity) error {
	p := r.convertor.ProductToPO(product)
	if err := r.productDao.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	product.SetID(p.Id)
	return nil
}

func (r *productRepositoryImpl) GetByID(ctx context.Context, id uint64) (*entity.ProductEntity, error) {
	p, err := r.productDao.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.convertor.ProductToEntity(p), nil
}

func (r *productRepositoryImpl) List(ctx context.Context) ([]*entity.ProductEntity, error) {
	return r.list(ctx, 0)
}

func (r *productRepositoryImpl) ListByCategory(ctx context.Context, categoryID uint64) ([]*entity.ProductEntity, error) {
	if categoryID == 0 {
		return []*entity.ProductEntity{}, nil
	}
	return r.list(ctx, categoryID)
}

func (r *productRepositoryImpl) list(ctx context.Context, categoryID uint64) ([]*entity.ProductEntity, error) {
	pos, err := r.productDao.List(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]*entity.ProductEntity, 0, len(pos))
	for _, p := range pos {
		out = append(out, r.convertor.ProductToEntity(p))
	}
	return out, nil
}

func (r *productRepositoryImpl) Update(ctx context.Context, product *entity.ProductEntity) error {
	return r.productDao.UpdateDetails(ctx, r.convertor.ProductToPO(product))
}

func (r *productRepositoryImpl) UpdateImages(ctx context.Context, id uint64, urls []string) error {
	if urls == nil {
		urls = []string{}
	}
	return r.productDao.UpdateImageURLs(ctx, id, urls)
}

func (r *productRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.productDao.Delete(ctx, id)
}

// categoryRepositoryImpl 分类仓储实现
type categoryRepositoryImpl struct {
	categoryDao *dao.CategoryDAO
	convertor   *convertor.CatalogConvertor
}

// NewCategoryRepository 创建分类仓储实现
func NewCategoryRepository(db *gorm.DB) repo.CategoryRepository {
	return &categoryRepositoryImpl{
		categoryDao: dao.NewCategoryDAO(db),
		convertor:   convertor.NewCatalogConvertor(),
	}
}

func (r *categoryRepositoryImpl) Create(ctx context.Context, category *entity.CategoryEntity) error {
	p := r.convertor.CategoryToPO(category)
	if err := r.categoryDao.Create(ctx, p); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	category.SetID(p.Id)
	return nil
}

func (r *categoryRepositoryImpl) GetByID(ctx context.Context, id uint64) (*entity.CategoryEntity, error) {
	p, err := r.categoryDao.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.convertor.CategoryToEntity(p), nil
}

func (r *categoryRepositoryImpl) List(ctx context.Context) ([]*entity.CategoryEntity, error) {
	pos, err := r.categoryDao.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]*entity.CategoryEntity, 0, len(pos))
	for _, p := range pos {
		out = append(out, r.convertor.CategoryToEntity(p))
	}
	return out, nil
}

func (r *categoryRepositoryImpl) Update(ctx context.Context, category *entity.CategoryEntity) error {
	return r.categoryDao.UpdateDetails(ctx, r.convertor.CategoryToPO(category))
}

func (r *categoryRepositoryImpl) UpdateImage(ctx context.Context, id uint64, url string) error {
	return r.categoryDao.UpdateImageURL(ctx, id, url)
}

func (r *categoryRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.categoryDao.Delete(ctx, id)
}
