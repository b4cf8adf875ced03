package http

import (
	"github.com/gin-gonic/gin"

	"storefront-service/ddd/application/app"
	"storefront-service/ddd/application/cqe"
	"storefront-service/pkg/errno"
	"storefront-service/pkg/restapi"
)

// CatalogController 商品与分类，图片随实体一起维护
type CatalogController struct {
	catalogApp   app.CatalogApp
	maxFileBytes int64
}

func NewCatalogController(catalogApp app.CatalogApp, maxFileBytes int64) *CatalogController {
	return &CatalogController{catalogApp: catalogApp, maxFileBytes: maxFileBytes}
}

// CreateProduct 支持 JSON 或带图片的 multipart
func (cc *CatalogController) CreateProduct(c *gin.Context) {
	var req cqe.CreateProductReq
	if err := c.ShouldBind(&req); err != nil {
		restapi.Failed(c, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	if isMultipart(c) {
		files, opts, err := cc.readImages(c)
		if err != nil {
			restapi.Failed(c, err)
			return
		}
		req.Files, req.Options = files, opts
	}

	out, err := cc.catalogApp.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, out)
}

func (cc *CatalogController) GetProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	out, err := cc.catalogApp.GetProduct(c.Request.Context(), id)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, out)
}

// ListProducts GET /api/v1/products?category_id=
func (cc *CatalogController) ListProducts(c *gin.Context) {
	var req cqe.ListProductsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		restapi.Failed(c, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	out, err := cc.catalogApp.ListProducts(c.Request.Context(), &req)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, out)
}

// UpdateProduct PUT /api/v1/admin/products/:id，只改基本信息
func (cc *CatalogController) UpdateProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	var req cqe.UpdateProductReq
	if err := c.ShouldBind(&req); err != nil {
		restapi.Failed(c, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	req.ID = id
	out, err := cc.catalogApp.UpdateProduct(c.Request.Context(), &req)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, out)
}

func (cc *CatalogController) DeleteProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	if err := cc.catalogApp.DeleteProduct(c.Request.Context(), id); err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, gin.H{"id": id})
}

// ReplaceProductImages PUT /api/v1/admin/products/:id/images
func (cc *CatalogController) ReplaceProductImages(c *gin.Context) {
	req, err := cc.replaceReq(c)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	out, err := cc.catalogApp.ReplaceProductImages(c.Request.Context(), req)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, out)
}

func (cc *CatalogController) CreateCategory(c *gin.Context) {
	var req cqe.CreateCategoryReq
	if err := c.ShouldBind(&req); err != nil {
		restapi.Failed(c, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	if isMultipart(c) {
		files, opts, err := cc.readImages(c)
		if err != nil {
			restapi.Failed(c, err)
			return
		}
		req.Files, req.Options = files, opts
	}

	out, err := cc.catalogApp.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, out)
}

func (cc *CatalogController) GetCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	out, err := cc.catalogApp.GetCategory(c.Request.Context(), id)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, out)
}

func (cc *CatalogController) ListCategories(c *gin.Context) {
	out, err := cc.catalogApp.ListCategories(c.Request.Context())
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, out)
}

func (cc *CatalogController) UpdateCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	var req cqe.UpdateCategoryReq
	if err := c.ShouldBind(&req); err != nil {
		restapi.Failed(c, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	req.ID = id
	out, err := cc.catalogApp.UpdateCategory(c.Request.Context(), &req)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, out)
}

func (cc *CatalogController) DeleteCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	if err := cc.catalogApp.DeleteCategory(c.Request.Context(), id); err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, gin.H{"id": id})
}

// ReplaceCategoryImage PUT /api/v1/admin/categories/:id/image
func (cc *CatalogController) ReplaceCategoryImage(c *gin.Context) {
	req, err := cc.replaceReq(c)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	out, err := cc.catalogApp.ReplaceCategoryImage(c.Request.Context(), req)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, out)
}

func (cc *CatalogController) replaceReq(c *gin.Context) (*cqe.ReplaceImagesReq, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}
	files, opts, err := cc.readImages(c)
	if err != nil {
		return nil, err
	}
	return &cqe.ReplaceImagesReq{ID: id, Files: files, Options: opts}, nil
}

func (cc *CatalogController) readImages(c *gin.Context) ([]cqe.UploadFile, cqe.UploadOptions, error) {
	files, err := readUploadFiles(c, cc.maxFileBytes)
	if err != nil {
		return nil, cqe.UploadOptions{}, err
	}
	opts, err := bindUploadOptions(c)
	return files, opts, err
}

func isMultipart(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEMultipartPOSTForm
}
