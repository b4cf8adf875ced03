package cqe

import (
	"strconv"

	"storefront-service/ddd/domain/vo"
	"storefront-service/pkg/errno"
)

// CreateProductReq 创建商品，可同时上传图片
type CreateProductReq struct {
	Name        string `form:"name" json:"name"`
	Price       string `form:"price" json:"price"`
	Description string `form:"description" json:"description"`
	CategoryID  string `form:"category_id" json:"category_id"`

	Files   []UploadFile  `form:"-" json:"-"`
	Options UploadOptions `form:"-" json:"-"`
}

// Validate 走字段规则表，返回第一个字段错误
func (r *CreateProductReq) Validate(maxFiles int) error {
	if errs := vo.ValidateFields(map[string]string{
		"product.name":        r.Name,
		"product.price":       r.Price,
		"product.description": r.Description,
		"product.category_id": r.CategoryID,
	}); len(errs) > 0 {
		return errno.NewBizError(errno.ErrFieldInvalid, errs[0])
	}
	if maxFiles > 0 && len(r.Files) > maxFiles {
		return errno.ErrTooManyFiles
	}
	return r.Options.Validate()
}

// PriceValue 已通过校验的价格
func (r *CreateProductReq) PriceValue() float64 {
	v, _ := strconv.ParseFloat(r.Price, 64)
	return v
}

// CategoryIDValue 已通过校验的分类ID
func (r *CreateProductReq) CategoryIDValue() uint64 {
	v, _ := strconv.ParseUint(r.CategoryID, 10, 64)
	return v
}

// CreateCategoryReq 创建分类，封面可选
type CreateCategoryReq struct {
	Name string `form:"name" json:"name"`

	Files   []UploadFile  `form:"-" json:"-"`
	Options UploadOptions `form:"-" json:"-"`
}

func (r *CreateCategoryReq) Validate() error {
	if fe := vo.ValidateField("category.name", r.Name); fe != nil {
		return errno.NewBizError(errno.ErrFieldInvalid, fe)
	}
	if len(r.Files) > 1 {
		return errno.ErrTooManyFiles
	}
	return r.Options.Validate()
}

// ReplaceImagesReq 替换商品图片或分类封面
type ReplaceImagesReq struct {
	ID      uint64
	Files   []UploadFile
	Options UploadOptions
}

func (r *ReplaceImagesReq) Validate(maxFiles int) error {
	if r.ID == 0 {
		return errno.ErrInvalidParam
	}
	if err := validateFiles(r.Files, maxFiles); err != nil {
		return err
	}
	return r.Options.Validate()
}

// UpdateProductReq 修改商品基本信息，字段规则与创建一致
type UpdateProductReq struct {
	ID          uint64 `form:"-" json:"-"`
	Name        string `form:"name" json:"name"`
	Price       string `form:"price" json:"price"`
	Description string `form:"description" json:"description"`
	CategoryID  string `form:"category_id" json:"category_id"`
}

func (r *UpdateProductReq) Validate() error {
	if r.ID == 0 {
		return errno.ErrInvalidParam
	}
	if errs := vo.ValidateFields(map[string]string{
		"product.name":        r.Name,
		"product.price":       r.Price,
		"product.description": r.Description,
		"product.category_id": r.CategoryID,
	}); len(errs) > 0 {
		return errno.NewBizError(errno.ErrFieldInvalid, errs[0])
	}
	return nil
}

func (r *UpdateProductReq) PriceValue() float64 {
	v, _ := strconv.ParseFloat(r.Price, 64)
	return v
}

func (r *UpdateProductReq) CategoryIDValue() uint64 {
	v, _ := strconv.ParseUint(r.CategoryID, 10, 64)
	return v
}

// ListProductsReq category_id 为空时返回全部商品
type ListProductsReq struct {
	CategoryID string `form:"category_id"`
}

func (r *ListProductsReq) Validate() error {
	if r.CategoryID == "" {
		return nil
	}
	if fe := vo.ValidateField("product.category_id", r.CategoryID); fe != nil {
		return errno.NewBizError(errno.ErrFieldInvalid, fe)
	}
	return nil
}

func (r *ListProductsReq) CategoryIDValue() uint64 {
	v, _ := strconv.ParseUint(r.CategoryID, 10, 64)
	return v
}

// UpdateCategoryReq 修改分类名称，IsActive 为空时保持原状态
type UpdateCategoryReq struct {
	ID       uint64 `form:"-" json:"-"`
	Name     string `form:"name" json:"name"`
	IsActive *bool  `form:"is_active" json:"is_active"`
}

func (r *UpdateCategoryReq) Validate() error {
	if r.ID == 0 {
		return errno.ErrInvalidParam
	}
	if fe := vo.ValidateField("category.name", r.Name); fe != nil {
		return errno.NewBizError(errno.ErrFieldInvalid, fe)
	}
	return nil
}
