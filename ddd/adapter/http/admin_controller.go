package http

import (
	"github.com/gin-gonic/gin"

	"storefront-service/ddd/application/app"
	"storefront-service/ddd/application/cqe"
	"storefront-service/pkg/errno"
	"storefront-service/pkg/middleware"
	"storefront-service/pkg/restapi"
)

// AdminController 后台登录与登出
type AdminController struct {
	adminApp app.AdminApp
}

func NewAdminController(adminApp app.AdminApp) *AdminController {
	return &AdminController{adminApp: adminApp}
}

func (a *AdminController) Login(c *gin.Context) {
	var req cqe.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		restapi.Failed(c, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	out, err := a.adminApp.Login(c.Request.Context(), &req)
	if err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, out)
}

// Logout 需要经过会话中间件
func (a *AdminController) Logout(c *gin.Context) {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		restapi.Failed(c, errno.ErrUnauthorized)
		return
	}
	if err := a.adminApp.Logout(c.Request.Context(), s); err != nil {
		restapi.Failed(c, err)
		return
	}
	restapi.Success(c, gin.H{"session_id": s.ID})
}
