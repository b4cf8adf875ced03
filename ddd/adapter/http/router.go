package http

import (
	"github.com/gin-gonic/gin"

	"storefront-service/ddd/application/app"
	"storefront-service/pkg/config"
	"storefront-service/pkg/manager"
	"storefront-service/pkg/middleware"
)

// StorefrontRoutePlugin 注册后台与店面接口
type StorefrontRoutePlugin struct{}

func (p *StorefrontRoutePlugin) Name() string {
	return "storefrontRoutes"
}

func (p *StorefrontRoutePlugin) RegisterRoutes(engine *gin.Engine, deps *manager.Dependencies) {
	mediaApp, catalogApp, adminApp := resolveApps(deps)

	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	maxFileBytes := cfg.Media.StoreMaxSizeBytes()

	NewRouter(
		NewMediaController(mediaApp, maxFileBytes),
		NewCatalogController(catalogApp, maxFileBytes),
		NewAdminController(adminApp),
		adminApp,
	).SetupRoutes(engine)
}

// resolveApps 优先使用依赖容器中的实例
func resolveApps(deps *manager.Dependencies) (app.MediaApp, app.CatalogApp, app.AdminApp) {
	mediaApp, ok := deps.MediaApp.(app.MediaApp)
	if !ok {
		mediaApp = app.DefaultMediaApp()
	}
	catalogApp, ok := deps.CatalogApp.(app.CatalogApp)
	if !ok {
		catalogApp = app.DefaultCatalogApp()
	}
	adminApp, ok := deps.AdminApp.(app.AdminApp)
	if !ok {
		adminApp = app.DefaultAdminApp()
	}
	return mediaApp, catalogApp, adminApp
}

// Router 路由配置
type Router struct {
	media    *MediaController
	catalog  *CatalogController
	admin    *AdminController
	sessions middleware.SessionResolver
}

func NewRouter(media *MediaController, catalog *CatalogController, admin *AdminController, sessions middleware.SessionResolver) *Router {
	return &Router{media: media, catalog: catalog, admin: admin, sessions: sessions}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes(engine *gin.Engine) {
	v1 := engine.Group("/api/v1")
	{
		// 店面只读接口
		v1.GET("/products", r.catalog.ListProducts)
		v1.GET("/products/:id", r.catalog.GetProduct)
		v1.GET("/categories", r.catalog.ListCategories)
		v1.GET("/categories/:id", r.catalog.GetCategory)
		v1.GET("/images/url", r.media.ResolveImageURL)
		v1.GET("/uploads/:upload_id/progress", r.media.GetUploadProgress)
		v1.POST("/forms/validate", r.media.ValidateForm)

		v1.POST("/admin/login", r.admin.Login)
	}

	admin := v1.Group("/admin", middleware.SessionAuthMiddleware(r.sessions))
	{
		admin.POST("/logout", r.admin.Logout)

		admin.POST("/uploads", r.media.UploadImages)
		admin.POST("/previews", r.media.GeneratePreviews)

		admin.POST("/products", r.catalog.CreateProduct)
		admin.PUT("/products/:id", r.catalog.UpdateProduct)
		admin.DELETE("/products/:id", r.catalog.DeleteProduct)
		admin.PUT("/products/:id/images", r.catalog.ReplaceProductImages)

		admin.POST("/categories", r.catalog.CreateCategory)
		admin.PUT("/categories/:id", r.catalog.UpdateCategory)
		admin.DELETE("/categories/:id", r.catalog.DeleteCategory)
		admin.PUT("/categories/:id/image", r.catalog.ReplaceCategoryImage)
	}
}
