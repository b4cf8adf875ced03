package dao

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"storefront-service/ddd/infrastructure/database/po"
	"storefront-service/pkg/logger"
)

// ErrRecordNotFound 更新/删除的目标不存在
var ErrRecordNotFound = gorm.ErrRecordNotFound

// ProductDAO 商品数据访问对象
type ProductDAO struct {
	db *gorm.DB
}

// NewProductDAO 创建商品DAO实例
func NewProductDAO(db *gorm.DB) *ProductDAO {
	return &ProductDAO{db: db}
}

// Create 创建商品
func (d *ProductDAO) Create(ctx context.Context, product *po.Product) error {
	if err := d.db.WithContext(ctx).Create(product).Error; err != nil {
		logger.Errorf("Error creating product: %v", err)
		return err
	}
	return nil
}

// FindByID 根据ID查询商品
func (d *ProductDAO) FindByID(ctx context.Context, id uint64) (*po.Product, error) {
	var product po.Product
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Errorf("Error query product by id=%d: %v", id, err)
		}
		return nil, err
	}
	return &product, nil
}

// List categoryID 为 0 时不过滤，按创建时间倒序
func (d *ProductDAO) List(ctx context.Context, categoryID uint64) ([]*po.Product, error) {
	var products []*po.Product
	query := d.db.WithContext(ctx).Model(&po.Product{})
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if err := query.Order("created_at desc").Order("id desc").Find(&products).Error; err != nil {
		logger.Errorf("Error listing products category_id=%d: %v", categoryID, err)
		return nil, err
	}
	return products, nil
}

// UpdateDetails 更新基本信息
func (d *ProductDAO) UpdateDetails(ctx context.Context, product *po.Product) error {
	res := d.db.WithContext(ctx).Model(&po.Product{}).Where("id = ?", product.Id).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"price":       product.Price,
			"description": product.Description,
			"category_id": product.CategoryID,
			"updated_at":  product.UpdatedAt,
		})
	if res.Error != nil {
		logger.Errorf("Error updating product id=%d: %v", product.Id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// UpdateImageURLs 覆盖图片列表
func (d *ProductDAO) UpdateImageURLs(ctx context.Context, id uint64, urls []string) error {
	res := d.db.WithContext(ctx).Model(&po.Product{}).Where("id = ?", id).
		Update("image_urls", datatypes.JSONSlice[string](urls))
	if res.Error != nil {
		logger.Errorf("Error updating product images id=%d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete 删除商品
func (d *ProductDAO) Delete(ctx context.Context, id uint64) error {
	res := d.db.WithContext(ctx).Where("id = ?", id).Delete(&po.Product{})
	if res.Error != nil {
		logger.Errorf("Error deleting product id=%d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// CategoryDAO 分类数据访问对象
type CategoryDAO struct {
	db *gorm.DB
}

// NewCategoryDAO 创建分类DAO实例
func NewCategoryDAO(db *gorm.DB) *CategoryDAO {
	return &CategoryDAO{db: db}
}

// Create 创建分类
func (d *CategoryDAO) Create(ctx context.Context, category *po.Category) error {
	if err := d.db.WithContext(ctx).Create(category).Error; err != nil {
		logger.Errorf("Error creating category: %v", err)
		return err
	}
	return nil
}

// FindByID 根据ID查询分类
func (d *CategoryDAO) FindByID(ctx context.Context, id uint64) (*po.Category, error) {
	var category po.Category
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// List 按创建时间倒序
func (d *CategoryDAO) List(ctx context.Context) ([]*po.Category, error) {
	var categories []*po.Category
	if err := d.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&categories).Error; err != nil {
		logger.Errorf("Error listing categories: %v", err)
		return nil, err
	}
	return categories, nil
}

// UpdateDetails 更新名称与状态
func (d *CategoryDAO) UpdateDetails(ctx context.Context, category *po.Category) error {
	res := d.db.WithContext(ctx).Model(&po.Category{}).Where("id = ?", category.Id).
		Updates(map[string]interface{}{
			"name":       category.Name,
			"is_active":  category.IsActive,
			"updated_at": category.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// UpdateImageURL 替换封面
func (d *CategoryDAO) UpdateImageURL(ctx context.Context, id uint64, url string) error {
	res := d.db.WithContext(ctx).Model(&po.Category{}).Where("id = ?", id).Update("image_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete 删除分类
func (d *CategoryDAO) Delete(ctx context.Context, id uint64) error {
	res := d.db.WithContext(ctx).Where("id = ?", id).Delete(&po.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
