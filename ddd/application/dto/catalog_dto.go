package dto

import (
	"time"

	"storefront-service/ddd/domain/entity"
)

// ProductDto 商品
type ProductDto struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	CategoryID  uint64    `json:"category_id"`
	ImageURLs   []string  `json:"image_urls"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Upload 本次请求附带上传时返回
	Upload *UploadOutcomeDto `json:"upload,omitempty"`
}

func NewProductDto(p *entity.ProductEntity) *ProductDto {
	if p == nil {
		return nil
	}
	urls := p.ImageURLs()
	if urls == nil {
		urls = []string{}
	}
	return &ProductDto{
		ID:          p.ID(),
		Name:        p.Name(),
		Price:       p.Price(),
		Description: p.Description(),
		CategoryID:  p.CategoryID(),
		ImageURLs:   urls,
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

// CategoryDto 分类
type CategoryDto struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Upload *UploadOutcomeDto `json:"upload,omitempty"`
}

func NewCategoryDto(c *entity.CategoryEntity) *CategoryDto {
	if c == nil {
		return nil
	}
	return &CategoryDto{
		ID:        c.ID(),
		Name:      c.Name(),
		ImageURL:  c.ImageURL(),
		IsActive:  c.IsActive(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

// ProductListDto 商品列表
type ProductListDto struct {
	Total int           `json:"total"`
	Items []*ProductDto `json:"items"`
}

func NewProductListDto(products []*entity.ProductEntity) *ProductListDto {
	items := make([]*ProductDto, 0, len(products))
	for _, p := range products {
		items = append(items, NewProductDto(p))
	}
	return &ProductListDto{Total: len(items), Items: items}
}

// CategoryListDto 分类列表
type CategoryListDto struct {
	Total int            `json:"total"`
	Items []*CategoryDto `json:"items"`
}

func NewCategoryListDto(categories []*entity.CategoryEntity) *CategoryListDto {
	items := make([]*CategoryDto, 0, len(categories))
	for _, c := range categories {
		items = append(items, NewCategoryDto(c))
	}
	return &CategoryListDto{Total: len(items), Items: items}
}
