package dto

import (
	"time"

	"storefront-service/ddd/domain/vo"
)

// LoginDto 登录结果
type LoginDto struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FormValidationDto 表单校验结果
type FormValidationDto struct {
	Valid  bool             `json:"valid"`
	Errors []*vo.FieldError `json:"errors"`
}
