package entity

import (
	"time"
)

// ProductEntity 商品实体，图片地址列表有序，与说明文字一一对应
type ProductEntity struct {
	id          uint64
	name        string
	price       float64
	description string
	categoryID  uint64
	imageURLs   []string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewProductEntity 创建商品
func NewProductEntity(name string, price float64, description string, categoryID uint64) *ProductEntity {
	now := time.Now()
	return &ProductEntity{
		name:        name,
		price:       price,
		description: description,
		categoryID:  categoryID,
		createdAt:   now,
		updatedAt:   now,
	}
}

// RestoreProductEntity 从持久化数据恢复
func RestoreProductEntity(id uint64, name string, price float64, description string, categoryID uint64, imageURLs []string, createdAt, updatedAt time.Time) *ProductEntity {
	return &ProductEntity{
		id:          id,
		name:        name,
		price:       price,
		description: description,
		categoryID:  categoryID,
		imageURLs:   append([]string(nil), imageURLs...),
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Getters
func (p *ProductEntity) ID() uint64           { return p.id }
func (p *ProductEntity) Name() string         { return p.name }
func (p *ProductEntity) Price() float64       { return p.price }
func (p *ProductEntity) Description() string  { return p.description }
func (p *ProductEntity) CategoryID() uint64   { return p.categoryID }
func (p *ProductEntity) CreatedAt() time.Time { return p.createdAt }
func (p *ProductEntity) UpdatedAt() time.Time { return p.updatedAt }

// ImageURLs 返回副本
func (p *ProductEntity) ImageURLs() []string {
	return append([]string(nil), p.imageURLs...)
}

func (p *ProductEntity) SetID(id uint64) { p.id = id }

// ReplaceImages 替换图片引用，返回被替换下来的旧地址
func (p *ProductEntity) ReplaceImages(urls []string) []string {
	old := p.imageURLs
	p.imageURLs = append([]string(nil), urls...)
	p.updatedAt = time.Now()
	return old
}

// UpdateDetails 覆盖基本信息，图片不变
func (p *ProductEntity) UpdateDetails(name string, price float64, description string, categoryID uint64) {
	p.name = name
	p.price = price
	p.description = description
	p.categoryID = categoryID
	p.updatedAt = time.Now()
}

// CategoryEntity 分类实体，只有一张封面图
type CategoryEntity struct {
	id        uint64
	name      string
	imageURL  string
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

// NewCategoryEntity 创建分类
func NewCategoryEntity(name string) *CategoryEntity {
	now := time.Now()
	return &CategoryEntity{name: name, active: true, createdAt: now, updatedAt: now}
}

// RestoreCategoryEntity 从持久化数据恢复
func RestoreCategoryEntity(id uint64, name, imageURL string, active bool, createdAt, updatedAt time.Time) *CategoryEntity {
	return &CategoryEntity{id: id, name: name, imageURL: imageURL, active: active, createdAt: createdAt, updatedAt: updatedAt}
}

func (c *CategoryEntity) ID() uint64           { return c.id }
func (c *CategoryEntity) Name() string         { return c.name }
func (c *CategoryEntity) ImageURL() string     { return c.imageURL }
func (c *CategoryEntity) IsActive() bool       { return c.active }
func (c *CategoryEntity) CreatedAt() time.Time { return c.createdAt }
func (c *CategoryEntity) UpdatedAt() time.Time { return c.updatedAt }

func (c *CategoryEntity) SetID(id uint64) { c.id = id }

// ImageURLs 以列表形式返回封面，便于复用生命周期管理
func (c *CategoryEntity) ImageURLs() []string {
	if c.imageURL == "" {
		return nil
	}
	return []string{c.imageURL}
}

// Rename 修改名称与上下架状态
func (c *CategoryEntity) Rename(name string, active bool) {
	c.name = name
	c.active = active
	c.updatedAt = time.Now()
}

// ReplaceImage 替换封面，返回旧地址
func (c *CategoryEntity) ReplaceImage(url string) []string {
	old := c.ImageURLs()
	c.imageURL = url
	c.updatedAt = time.Now()
	return old
}
