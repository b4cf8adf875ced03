package convertor

import (
	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/infrastructure/database/po"
)

// CatalogConvertor 商品/分类 PO 与实体互转
type CatalogConvertor struct{}

// NewCatalogConvertor 创建转换器
func NewCatalogConvertor() *CatalogConvertor {
	return &CatalogConvertor{}
}

// ProductToEntity 将PO转换为Entity
func (c *CatalogConvertor) ProductToEntity(p *po.Product) *entity.ProductEntity {
	if p == nil {
		return nil
	}
	return entity.RestoreProductEntity(p.Id, p.Name, p.Price, p.Description, p.CategoryID,
		[]string(p.ImageURLs), p.CreatedAt, p.UpdatedAt)
}

// ProductToPO 将Entity转换为PO
func (c *CatalogConvertor) ProductToPO(e *entity.ProductEntity) *po.Product {
	return &po.Product{
		BaseModel:   po.BaseModel{Id: e.ID(), CreatedAt: e.CreatedAt(), UpdatedAt: e.UpdatedAt()},
		Name:        e.Name(),
		Price:       e.Price(),
		Description: e.Description(),
		CategoryID:  e.CategoryID(),
		ImageURLs:   e.ImageURLs(),
	}
}

// CategoryToEntity 将PO转换为Entity
func (c *CatalogConvertor) CategoryToEntity(p *po.Category) *entity.CategoryEntity {
	if p == nil {
		return nil
	}
	return entity.RestoreCategoryEntity(p.Id, p.Name, p.ImageURL, p.IsActive, p.CreatedAt, p.UpdatedAt)
}

// CategoryToPO 将Entity转换为PO
func (c *CatalogConvertor) CategoryToPO(e *entity.CategoryEntity) *po.Category {
	return &po.Category{
		BaseModel: po.BaseModel{Id: e.ID(), CreatedAt: e.CreatedAt(), UpdatedAt: e.UpdatedAt()},
		Name:      e.Name(),
		ImageURL:  e.ImageURL(),
		IsActive:  e.IsActive(),
	}
}
