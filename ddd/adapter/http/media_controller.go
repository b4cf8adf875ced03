package http

import (
	"github.com/gin-gonic/gin"

	"storefront-service/ddd/application/app"
	"storefront-service/ddd/application/cqe"
	"storefront-service/pkg/errno"
	"storefront-service/pkg/restapi"
)

// MediaController 上传、预览、进度与地址解析
type MediaController struct {
	mediaApp     app.MediaApp
	maxFileBytes int64
}

func NewMediaController(mediaApp app.MediaApp, maxFileBytes int64) *MediaController {
	return &MediaController{mediaApp: mediaApp, maxFileBytes: maxFileBytes}
}

// UploadImages POST /api/v1/admin/uploads
func (m *MediaController) UploadImages(c *gin.Context) {
	files, err := readUploadFiles(c, m.maxFileBytes)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	opts, err := bindUploadOptions(c)
	if err != nil {
		restapi.Failed(c, err)
		return
	}

	req := &cqe.UploadImagesReq{
		Files:   files,
		Bucket:  c.PostForm("bucket"),
		Folder:  c.PostForm("folder"),
		Options: opts,
	}
	out, err := m.mediaApp.UploadImages(c.Request.Context(), req)
	respond(c, out, err, out != nil)
}

// GeneratePreviews POST /api/v1/admin/previews
func (m *MediaController) GeneratePreviews(c *gin.Context) {
	files, err := readUploadFiles(c, m.maxFileBytes)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	out, err := m.mediaApp.GeneratePreviews(c.Request.Context(), &cqe.PreviewReq{Files: files})
	respond(c, out, err, out != nil)
}

// GetUploadProgress GET /api/v1/uploads/:upload_id/progress
func (m *MediaController) GetUploadProgress(c *gin.Context) {
	snapshot, err := m.mediaApp.GetUploadProgress(c.Request.Context(), c.Param("upload_id"))
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, snapshot)
}

// ResolveImageURL GET /api/v1/images/url
func (m *MediaController) ResolveImageURL(c *gin.Context) {
	var req cqe.ResolveURLReq
	if err := c.ShouldBindQuery(&req); err != nil {
		restapi.Failed(c, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	out, err := m.mediaApp.ResolveImageURL(c.Request.Context(), &req)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, out)
}

// ValidateForm POST /api/v1/forms/validate
func (m *MediaController) ValidateForm(c *gin.Context) {
	var req cqe.ValidateFormReq
	if err := c.ShouldBindJSON(&req); err != nil {
		restapi.Failed(c, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	restapi.Success(c, m.mediaApp.ValidateForm(c.Request.Context(), &req))
}
