package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-service/ddd/application/cqe"
	"storefront-service/pkg/errno"
	"storefront-service/pkg/restapi"
)

// 兼容 files[] 与 files 两种字段名
var fileFields = []string{"files[]", "files", "file"}

// readUploadFiles 读取 multipart 中的图片，单个文件读取上限为 maxBytes
func readUploadFiles(c *gin.Context, maxBytes int64) ([]cqe.UploadFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, errno.ErrNoFiles
		}
		return nil, errno.NewBizError(errno.ErrUploadIllegal, err)
	}

	var headers []*multipart.FileHeader
	for _, field := range fileFields {
		headers = append(headers, form.File[field]...)
	}

	files := make([]cqe.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readOne(fh, maxBytes)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func readOne(fh *multipart.FileHeader, maxBytes int64) (cqe.UploadFile, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return cqe.UploadFile{}, errno.NewBizError(errno.ErrFileSizeIllegal, fmt.Errorf("%s is %d bytes", fh.Filename, fh.Size))
	}
	src, err := fh.Open()
	if err != nil {
		return cqe.UploadFile{}, errno.NewBizError(errno.ErrUploadIllegal, err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return cqe.UploadFile{}, errno.NewBizError(errno.ErrUploadIllegal, err)
	}

	mediaType := fh.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(content)
	}
	return cqe.UploadFile{Name: fh.Filename, MediaType: mediaType, Content: content}, nil
}

// bindUploadOptions 表单覆盖项 + X-Upload-ID
func bindUploadOptions(c *gin.Context) (cqe.UploadOptions, error) {
	var opts cqe.UploadOptions
	if err := c.ShouldBind(&opts); err != nil {
		return opts, errno.NewBizError(errno.ErrInvalidParam, err)
	}
	opts.UploadID = strings.TrimSpace(c.GetHeader("X-Upload-ID"))
	if opts.UploadID == "" {
		opts.UploadID = strings.TrimSpace(c.PostForm("upload_id"))
	}
	return opts, nil
}

func parseID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errno.ErrInvalidParam
	}
	return id, nil
}

// respond 带数据的失败（如部分失败的批次）也把数据返回给调用方
func respond(c *gin.Context, data interface{}, err error, hasData bool) {
	switch {
	case err == nil:
		restapi.Success(c, data)
	case hasData:
		restapi.FailedWithData(c, err, data)
	default:
		restapi.Failed(c, err)
	}
}
