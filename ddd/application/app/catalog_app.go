package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront-service/ddd/application/cqe"
	"storefront-service/ddd/application/dto"
	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/repo"
	"storefront-service/ddd/domain/service"
	"storefront-service/ddd/infrastructure/database/dao"
	"storefront-service/ddd/infrastructure/database/persistence"
	"storefront-service/internal/resource"
	"storefront-service/pkg/assert"
	"storefront-service/pkg/errno"
	"storefront-service/pkg/logger"
)

var (
	singleCatalogApp CatalogApp
	onceCatalogApp   sync.Once
)

const (
	productFolder  = "products"
	categoryFolder = "categories"
)

type CatalogApp interface {
	CreateProduct(ctx context.Context, req *cqe.CreateProductReq) (*dto.ProductDto, error)
	GetProduct(ctx context.Context, id uint64) (*dto.ProductDto, error)
	// ListProducts 按创建时间倒序，可按分类过滤
	ListProducts(ctx context.Context, req *cqe.ListProductsReq) (*dto.ProductListDto, error)
	// UpdateProduct 修改基本信息，图片走 ReplaceProductImages
	UpdateProduct(ctx context.Context, req *cqe.UpdateProductReq) (*dto.ProductDto, error)
	// DeleteProduct 删除商品并清理其图片
	DeleteProduct(ctx context.Context, id uint64) error
	// ReplaceProductImages 新图全部上传并提交后才删除旧图
	ReplaceProductImages(ctx context.Context, req *cqe.ReplaceImagesReq) (*dto.ProductDto, error)

	CreateCategory(ctx context.Context, req *cqe.CreateCategoryReq) (*dto.CategoryDto, error)
	GetCategory(ctx context.Context, id uint64) (*dto.CategoryDto, error)
	ListCategories(ctx context.Context) (*dto.CategoryListDto, error)
	UpdateCategory(ctx context.Context, req *cqe.UpdateCategoryReq) (*dto.CategoryDto, error)
	DeleteCategory(ctx context.Context, id uint64) error
	ReplaceCategoryImage(ctx context.Context, req *cqe.ReplaceImagesReq) (*dto.CategoryDto, error)
}

type catalogAppImpl struct {
	pipeline   *Pipeline
	products   repo.ProductRepository
	categories repo.CategoryRepository
}

func DefaultCatalogApp() CatalogApp {
	assert.NotCircular()
	onceCatalogApp.Do(func() {
		db := resource.DefaultMysqlResource().MainDB()
		singleCatalogApp = NewCatalogAppWith(
			DefaultPipeline(),
			persistence.NewProductRepository(db),
			persistence.NewCategoryRepository(db),
		)
	})
	assert.NotNil(singleCatalogApp)
	return singleCatalogApp
}

func NewCatalogAppWith(pipeline *Pipeline, products repo.ProductRepository, categories repo.CategoryRepository) CatalogApp {
	return &catalogAppImpl{pipeline: pipeline, products: products, categories: categories}
}

func (c *catalogAppImpl) CreateProduct(ctx context.Context, req *cqe.CreateProductReq) (*dto.ProductDto, error) {
	if err := req.Validate(c.pipeline.Media.MaxFiles); err != nil {
		return nil, err
	}
	product := entity.NewProductEntity(req.Name, req.PriceValue(), req.Description, req.CategoryIDValue())

	if len(req.Files) == 0 {
		if err := c.products.Create(ctx, product); err != nil {
			return nil, errno.NewBizError(errno.ErrDatabase, err)
		}
		return dto.NewProductDto(product), nil
	}

	// 新建也走生命周期：图片全部上传成功后才写库，写库失败清理新图
	result, err := c.replace(ctx, nil, c.pipeline.Media.ProductBucket, productFolder, req.Files, req.Options,
		func(ctx context.Context, locations []string) error {
			product.ReplaceImages(locations)
			return c.products.Create(ctx, product)
		}, "product_created")
	if err != nil {
		return nil, err
	}
	d := dto.NewProductDto(product)
	d.Upload = result
	return d, nil
}

func (c *catalogAppImpl) GetProduct(ctx context.Context, id uint64) (*dto.ProductDto, error) {
	product, err := c.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewProductDto(product), nil
}

func (c *catalogAppImpl) ListProducts(ctx context.Context, req *cqe.ListProductsReq) (*dto.ProductListDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var (
		products []*entity.ProductEntity
		err      error
	)
	if id := req.CategoryIDValue(); id > 0 {
		products, err = c.products.ListByCategory(ctx, id)
	} else {
		products, err = c.products.List(ctx)
	}
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	return dto.NewProductListDto(products), nil
}

func (c *catalogAppImpl) UpdateProduct(ctx context.Context, req *cqe.UpdateProductReq) (*dto.ProductDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	product, err := c.loadProduct(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	product.UpdateDetails(req.Name, req.PriceValue(), req.Description, req.CategoryIDValue())
	if err := c.products.Update(ctx, product); err != nil {
		if errors.Is(err, dao.ErrRecordNotFound) {
			return nil, errno.ErrProductNotFound
		}
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	return dto.NewProductDto(product), nil
}

func (c *catalogAppImpl) DeleteProduct(ctx context.Context, id uint64) error {
	product, err := c.loadProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := c.products.Delete(ctx, id); err != nil {
		return errno.NewBizError(errno.ErrDatabase, err)
	}
	c.pipeline.Lifecycle.ReleaseAssets(ctx, c.pipeline.Media.ProductBucket, product.ImageURLs(), "product_deleted")
	logger.Infof("Product deleted id=%d images=%d", id, len(product.ImageURLs()))
	return nil
}

func (c *catalogAppImpl) ReplaceProductImages(ctx context.Context, req *cqe.ReplaceImagesReq) (*dto.ProductDto, error) {
	if err := req.Validate(c.pipeline.Media.MaxFiles); err != nil {
		return nil, err
	}
	product, err := c.loadProduct(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	folder := fmt.Sprintf("%s/%d", productFolder, product.ID())
	result, err := c.replace(ctx, product.ImageURLs(), c.pipeline.Media.ProductBucket, folder, req.Files, req.Options,
		func(ctx context.Context, locations []string) error {
			return c.products.UpdateImages(ctx, product.ID(), locations)
		}, "product_images_replaced")
	if err != nil {
		return nil, err
	}
	product.ReplaceImages(result.Locations)
	d := dto.NewProductDto(product)
	d.Upload = result
	return d, nil
}

func (c *catalogAppImpl) CreateCategory(ctx context.Context, req *cqe.CreateCategoryReq) (*dto.CategoryDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	category := entity.NewCategoryEntity(req.Name)

	if len(req.Files) == 0 {
		if err := c.categories.Create(ctx, category); err != nil {
			return nil, errno.NewBizError(errno.ErrDatabase, err)
		}
		return dto.NewCategoryDto(category), nil
	}

	result, err := c.replace(ctx, nil, c.pipeline.Media.CategoryBucket, categoryFolder, req.Files, req.Options,
		func(ctx context.Context, locations []string) error {
			category.ReplaceImage(locations[0])
			return c.categories.Create(ctx, category)
		}, "category_created")
	if err != nil {
		return nil, err
	}
	d := dto.NewCategoryDto(category)
	d.Upload = result
	return d, nil
}

func (c *catalogAppImpl) GetCategory(ctx context.Context, id uint64) (*dto.CategoryDto, error) {
	category, err := c.loadCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewCategoryDto(category), nil
}

func (c *catalogAppImpl) ListCategories(ctx context.Context) (*dto.CategoryListDto, error) {
	categories, err := c.categories.List(ctx)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	return dto.NewCategoryListDto(categories), nil
}

func (c *catalogAppImpl) UpdateCategory(ctx context.Context, req *cqe.UpdateCategoryReq) (*dto.CategoryDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	category, err := c.loadCategory(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	active := category.IsActive()
	if req.IsActive != nil {
		active = *req.IsActive
	}
	category.Rename(req.Name, active)
	if err := c.categories.Update(ctx, category); err != nil {
		if errors.Is(err, dao.ErrRecordNotFound) {
			return nil, errno.ErrCategoryNotFound
		}
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	return dto.NewCategoryDto(category), nil
}

func (c *catalogAppImpl) DeleteCategory(ctx context.Context, id uint64) error {
	category, err := c.loadCategory(ctx, id)
	if err != nil {
		return err
	}
	if err := c.categories.Delete(ctx, id); err != nil {
		return errno.NewBizError(errno.ErrDatabase, err)
	}
	c.pipeline.Lifecycle.ReleaseAssets(ctx, c.pipeline.Media.CategoryBucket, category.ImageURLs(), "category_deleted")
	return nil
}

func (c *catalogAppImpl) ReplaceCategoryImage(ctx context.Context, req *cqe.ReplaceImagesReq) (*dto.CategoryDto, error) {
	if err := req.Validate(1); err != nil {
		return nil, err
	}
	category, err := c.loadCategory(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	folder := fmt.Sprintf("%s/%d", categoryFolder, category.ID())
	result, err := c.replace(ctx, category.ImageURLs(), c.pipeline.Media.CategoryBucket, folder, req.Files, req.Options,
		func(ctx context.Context, locations []string) error {
			return c.categories.UpdateImage(ctx, category.ID(), locations[0])
		}, "category_image_replaced")
	if err != nil {
		return nil, err
	}
	category.ReplaceImage(result.Locations[0])
	d := dto.NewCategoryDto(category)
	d.Upload = result
	return d, nil
}

// replace 统一的上传-提交-清理流程，失败时父实体保持原状
func (c *catalogAppImpl) replace(ctx context.Context, existing []string, bucket, folder string, files []cqe.UploadFile,
	opts cqe.UploadOptions, commit service.CommitFunc, reason string) (*dto.UploadOutcomeDto, error) {

	batch := c.pipeline.BatchRequest(files, service.UploadDestination{Bucket: bucket, Folder: folder}, opts)
	reporter := c.pipeline.Reporter(ctx, opts.UploadID, len(files))
	if reporter != nil {
		batch.Progress = reporter
		defer reporter.Finish()
	}

	result, err := c.pipeline.Lifecycle.ReplaceAssets(ctx, service.ReplaceAssetsRequest{
		Existing: existing,
		Upload:   batch,
		Commit:   commit,
		Reason:   reason,
	})
	var outcome *dto.UploadOutcomeDto
	if result != nil {
		outcome = dto.NewUploadOutcomeDto(opts.UploadID, result.Outcome)
	}
	if err != nil {
		if service.IsReplaceFailure(err) {
			code := errno.ErrAssetReplace
			if existing == nil {
				code = errno.ErrUploadError
			}
			return outcome, errno.NewBizError(code, err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return outcome, err
		}
		return outcome, errno.NewBizError(errno.ErrDatabase, err)
	}
	return outcome, nil
}

func (c *catalogAppImpl) loadProduct(ctx context.Context, id uint64) (*entity.ProductEntity, error) {
	if id == 0 {
		return nil, errno.ErrInvalidParam
	}
	product, err := c.products.GetByID(ctx, id)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if product == nil {
		return nil, errno.ErrProductNotFound
	}
	return product, nil
}

func (c *catalogAppImpl) loadCategory(ctx context.Context, id uint64) (*entity.CategoryEntity, error) {
	if id == 0 {
		return nil, errno.ErrInvalidParam
	}
	category, err := c.categories.GetByID(ctx, id)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if category == nil {
		return nil, errno.ErrCategoryNotFound
	}
	return category, nil
}
