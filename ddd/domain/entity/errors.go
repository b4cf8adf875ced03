package entity

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotAttempted abortBatch 策略下未执行的文件
var ErrNotAttempted = errors.New("not attempted: batch aborted")

// ValidationError 上传前的大小/类型校验失败，不重试
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Name, e.Reason)
}

// DecodeError 图片损坏或格式不支持
type DecodeError struct {
	Name  string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Name, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// EncodeError 编码器拒绝参数
type EncodeError struct {
	Name   string
	Format string
	Cause  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s as %s: %v", e.Name, e.Format, e.Cause)
}

func (e *EncodeError) Unwrap() error { return e.Cause }

// StoreError 对象存储的传输/权限错误。Permanent 为 true 时不再重试。
type StoreError struct {
	Op        string
	Bucket    string
	Key       string
	Permanent bool
	Cause     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// BatchPartialFailure 批处理存在失败文件
type BatchPartialFailure struct {
	Failed  int
	Total   int
	All     bool
	Aborted bool
}

func (e *BatchPartialFailure) Error() string {
	switch {
	case e.All:
		return fmt.Sprintf("all %d images failed", e.Total)
	case e.Aborted:
		return fmt.Sprintf("batch aborted after %d of %d images failed", e.Failed, e.Total)
	default:
		return fmt.Sprintf("%d of %d images failed", e.Failed, e.Total)
	}
}

// ErrorKind 错误分类，用于日志、指标与接口返回
func ErrorKind(err error) string {
	var (
		ve *ValidationError
		de *DecodeError
		ee *EncodeError
		se *StoreError
		bp *BatchPartialFailure
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &de):
		return "decode"
	case errors.As(err, &ee):
		return "encode"
	case errors.As(err, &se):
		return "store"
	case errors.As(err, &bp):
		return "batch"
	case errors.Is(err, ErrNotAttempted):
		return "aborted"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsRetryable 只有非永久性的存储错误才会重试
func IsRetryable(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && !se.Permanent
}
