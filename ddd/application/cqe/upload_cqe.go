package cqe

import (
	"errors"
	"strings"

	"storefront-service/ddd/domain/vo"
	"storefront-service/pkg/errno"
)

// UploadFile multipart 中的单个文件
type UploadFile struct {
	Name      string
	MediaType string
	Content   []byte
}

// UploadOptions 单次请求对默认配置的覆盖，零值表示使用配置默认值
type UploadOptions struct {
	Quality          float64 `form:"quality"`
	Format           string  `form:"format"`
	MaxWidth         int     `form:"max_width"`
	MaxHeight        int     `form:"max_height"`
	ConcurrencyLimit int     `form:"concurrency_limit"`
	OnFileError      string  `form:"on_file_error"`
	OnTranscodeError string  `form:"on_transcode_error"`
	// Variants 额外上传 thumbnail/medium/large 派生图
	Variants         bool    `form:"variants"`
	// UploadID 非空时进度写入 Redis，可轮询查询
	UploadID         string  `form:"-"`
}

// Validate 只校验显式提供的覆盖项
func (o *UploadOptions) Validate() error {
	if o.Quality < 0 || o.Quality > 1 {
		return errno.NewBizError(errno.ErrInvalidParam, errors.New("quality must be within (0,1]"))
	}
	if o.MaxWidth < 0 || o.MaxHeight < 0 || o.ConcurrencyLimit < 0 {
		return errno.NewBizError(errno.ErrInvalidParam, errors.New("limits must not be negative"))
	}
	if _, err := vo.ParseImageFormat(o.Format); err != nil {
		return errno.NewBizError(errno.ErrInvalidParam, err)
	}
	if o.OnFileError != "" {
		if _, err := vo.ParseFileErrorPolicy(o.OnFileError); err != nil {
			return errno.NewBizError(errno.ErrInvalidParam, err)
		}
	}
	if o.OnTranscodeError != "" {
		if _, err := vo.ParseTranscodeErrorPolicy(o.OnTranscodeError); err != nil {
			return errno.NewBizError(errno.ErrInvalidParam, err)
		}
	}
	return nil
}

// UploadImagesReq 批量上传图片
type UploadImagesReq struct {
	Files   []UploadFile
	Bucket  string `form:"bucket"`
	Folder  string `form:"folder"`
	Options UploadOptions
}

// Validate 校验文件数量与目标
func (r *UploadImagesReq) Validate(maxFiles int) error {
	if err := validateFiles(r.Files, maxFiles); err != nil {
		return err
	}
	if strings.Contains(r.Folder, "..") {
		return errno.ErrFileNameIllegal
	}
	return r.Options.Validate()
}

// PreviewReq 生成本地预览
type PreviewReq struct {
	Files []UploadFile
}

func (r *PreviewReq) Validate(maxFiles int) error {
	return validateFiles(r.Files, maxFiles)
}

// ResolveURLReq 查询公开地址
type ResolveURLReq struct {
	Bucket  string `form:"bucket"`
	Path    string `form:"path" binding:"required"`
	Width   int    `form:"width"`
	Height  int    `form:"height"`
	Resize  string `form:"resize"`
	Format  string `form:"format"`
	Quality int    `form:"quality"`
	// Transform 为 false 时返回原图地址
	Transform bool `form:"transform"`
}

func (r *ResolveURLReq) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return errno.ErrMissingParam
	}
	if r.Width < 0 || r.Height < 0 || r.Quality < 0 || r.Quality > 100 {
		return errno.ErrInvalidParam
	}
	switch r.Resize {
	case "", "cover", "contain", "fill":
	default:
		return errno.ErrInvalidParam
	}
	return nil
}

func validateFiles(files []UploadFile, maxFiles int) error {
	if len(files) == 0 {
		return errno.ErrNoFiles
	}
	if maxFiles > 0 && len(files) > maxFiles {
		return errno.ErrTooManyFiles
	}
	for _, f := range files {
		if strings.TrimSpace(f.Name) == "" || strings.ContainsAny(f.Name, `/\`) {
			return errno.ErrFileNameIllegal
		}
	}
	return nil
}
