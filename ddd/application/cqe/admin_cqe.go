package cqe

// LoginReq 后台登录
type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ValidateFormReq 按规则表校验表单字段，key 形如 product.name
type ValidateFormReq struct {
	Fields map[string]string `json:"fields" binding:"required"`
}
