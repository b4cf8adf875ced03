package errno

import (
	"errors"
	"fmt"
)

// code=0 请求成功
// code=4xx 客户端请求错误
// code=5xx 服务器端错误
// code=2xxxx 业务处理错误码

type Errno struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Errno) Error() string {
	return e.Message
}

// BizError 携带底层原因的业务错误
type BizError struct {
	*Errno
	Cause error
}

func (e *BizError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *BizError) Unwrap() error {
	return e.Cause
}

// NewBizError 包装业务错误
func NewBizError(code *Errno, cause error) *BizError {
	return &BizError{Errno: code, Cause: cause}
}

// Decode 提取错误码，未知错误归为 ErrInternalServer
func Decode(err error) *Errno {
	if err == nil {
		return OK
	}
	var biz *BizError
	if errors.As(err, &biz) && biz.Errno != nil {
		return biz.Errno
	}
	var e *Errno
	if errors.As(err, &e) {
		return e
	}
	return ErrInternalServer
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized = &Errno{Code: 401, Message: "Unauthorized"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}
	ErrUnknown        = &Errno{Code: 510, Message: "Unknown error"}

	// 业务错误码
	ErrMissingParam      = &Errno{Code: 20001, Message: "Missing required parameter"}
	ErrFileNameIllegal   = &Errno{Code: 20002, Message: "File name is illegal"}
	ErrFileSizeIllegal   = &Errno{Code: 20003, Message: "File size is illegal"}
	ErrUploadIllegal     = &Errno{Code: 20004, Message: "Upload files is illegal"}
	ErrBucketNotExist    = &Errno{Code: 20005, Message: "Storage bucket does not exist"}
	ErrUploadError       = &Errno{Code: 20006, Message: "Upload error"}
	ErrNoFiles           = &Errno{Code: 20007, Message: "No files submitted"}
	ErrTooManyFiles      = &Errno{Code: 20008, Message: "Too many files submitted"}
	ErrAllUploadsFailed  = &Errno{Code: 20009, Message: "No image could be processed"}
	ErrAssetReplace      = &Errno{Code: 20010, Message: "Image replacement failed, existing images kept"}
	ErrProductNotFound   = &Errno{Code: 20011, Message: "Product not found"}
	ErrCategoryNotFound  = &Errno{Code: 20012, Message: "Category not found"}
	ErrFieldInvalid      = &Errno{Code: 20013, Message: "Field validation failed"}
	ErrPreviewFailed     = &Errno{Code: 20014, Message: "Preview generation failed"}
	ErrUploadIDRequired  = &Errno{Code: 20015, Message: "Upload ID is required"}
	ErrProgressNotFound  = &Errno{Code: 20016, Message: "Upload progress not found"}
	ErrInvalidCredential = &Errno{Code: 20017, Message: "Invalid username or password"}
	ErrSessionExpired    = &Errno{Code: 20018, Message: "Session expired or revoked"}
)
