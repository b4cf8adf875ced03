package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/pkg/errno"
)

// Response 统一响应结构
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:      errno.OK.Code,
		Message:   errno.OK.Message,
		Data:      data,
		RequestID: c.GetString("request_id"),
	})
}

// Failed 返回失败响应，HTTP 状态码由错误码推导
func Failed(c *gin.Context, err error) {
	FailedWithData(c, err, nil)
}

// FailedWithData 返回带数据的失败响应，例如部分失败的批处理结果
func FailedWithData(c *gin.Context, err error, data interface{}) {
	e := errno.Decode(err)
	c.JSON(httpStatus(e), Response{
		Code:      e.Code,
		Message:   err.Error(),
		Data:      data,
		RequestID: c.GetString("request_id"),
	})
}

func httpStatus(e *errno.Errno) int {
	switch {
	case e.Code == errno.ErrUnauthorized.Code, e == errno.ErrInvalidCredential, e == errno.ErrSessionExpired:
		return http.StatusUnauthorized
	case e.Code == errno.ErrNotFound.Code, e == errno.ErrProductNotFound, e == errno.ErrCategoryNotFound, e == errno.ErrProgressNotFound:
		return http.StatusNotFound
	case e.Code >= 400 && e.Code < 500:
		return http.StatusBadRequest
	case e.Code >= 20000:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
