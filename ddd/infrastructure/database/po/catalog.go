package po

import "gorm.io/datatypes"

// Product 商品持久化对象，图片地址按顺序存为 JSON 数组
type Product struct {
	BaseModel
	Name        string                      `gorm:"column:name;type:varchar(100)" json:"name"`
	Price       float64                     `gorm:"column:price;type:decimal(12,2)" json:"price"`
	Description string                      `gorm:"column:description;type:varchar(2000)" json:"description"`
	CategoryID  uint64                      `gorm:"column:category_id;index" json:"category_id"`
	ImageURLs   datatypes.JSONSlice[string] `gorm:"column:image_urls;type:json" json:"image_urls"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// Category 分类持久化对象
type Category struct {
	BaseModel
	Name     string `gorm:"column:name;type:varchar(100);uniqueIndex" json:"name"`
	ImageURL string `gorm:"column:image_url;type:varchar(1024)" json:"image_url"`
	IsActive bool   `gorm:"column:is_active;default:true" json:"is_active"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
