package repo

import (
	"context"

	"storefront-service/ddd/domain/entity"
)

// ProductRepository 商品仓储接口，记录不存在时返回 (nil, nil)
type ProductRepository interface {
	// Create 创建商品，回填ID
	Create(ctx context.Context, product *entity.ProductEntity) error

	// GetByID 根据ID获取商品
	GetByID(ctx context.Context, id uint64) (*entity.ProductEntity, error)

	// List 按创建时间倒序
	List(ctx context.Context) ([]*entity.ProductEntity, error)

	// ListByCategory 指定分类下的商品，按创建时间倒序
	ListByCategory(ctx context.Context, categoryID uint64) ([]*entity.ProductEntity, error)

	// Update 覆盖名称、价格、描述、分类，不改图片
	Update(ctx context.Context, product *entity.ProductEntity) error

	// UpdateImages 覆盖图片地址列表
	UpdateImages(ctx context.Context, id uint64, urls []string) error

	// Delete 删除商品
	Delete(ctx context.Context, id uint64) error
}

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.CategoryEntity) error
	GetByID(ctx context.Context, id uint64) (*entity.CategoryEntity, error)
	// List 按创建时间倒序
	List(ctx context.Context) ([]*entity.CategoryEntity, error)
	// Update 覆盖名称与上下架状态，不改封面
	Update(ctx context.Context, category *entity.CategoryEntity) error
	UpdateImage(ctx context.Context, id uint64, url string) error
	Delete(ctx context.Context, id uint64) error
}
