package manager

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"storefront-service/pkg/config"
	"storefront-service/pkg/logger"
)

// Resource 外部资源（数据库、缓存、对象存储等）
type Resource interface {
	MustOpen()
	Close()
}

// ResourcePlugin 资源插件
type ResourcePlugin interface {
	Name() string
	MustCreateResource() Resource
}

// Component 后台组件（消费者、Worker 等）
type Component interface {
	Start() error
	Stop() error
	GetName() string
}

// ComponentPlugin 组件插件
type ComponentPlugin interface {
	Name() string
	MustCreateComponent(deps *Dependencies) Component
}

// RoutePlugin 路由插件
type RoutePlugin interface {
	Name() string
	RegisterRoutes(engine *gin.Engine, deps *Dependencies)
}

// Dependencies 依赖注入容器，应用服务以 interface{} 保存避免循环依赖
type Dependencies struct {
	DB         *gorm.DB
	Config     *config.Config
	MediaApp   interface{}
	CatalogApp interface{}
	AdminApp   interface{}
}

type registry struct {
	mu               sync.Mutex
	resourcePlugins  []ResourcePlugin
	componentPlugins []ComponentPlugin
	routePlugins     []RoutePlugin
	resources        []Resource
	components       []Component
}

var defaultRegistry = &registry{}

// RegisterResourcePlugin 注册资源插件，一般在 init 中调用
func RegisterResourcePlugin(p ResourcePlugin) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.resourcePlugins = append(defaultRegistry.resourcePlugins, p)
}

// RegisterComponentPlugin 注册组件插件
func RegisterComponentPlugin(p ComponentPlugin) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.componentPlugins = append(defaultRegistry.componentPlugins, p)
}

// RegisterRoutePlugin 注册路由插件
func RegisterRoutePlugin(p RoutePlugin) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.routePlugins = append(defaultRegistry.routePlugins, p)
}

// MustInitResources 按注册顺序打开全部资源
func MustInitResources() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	for _, p := range defaultRegistry.resourcePlugins {
		r := p.MustCreateResource()
		r.MustOpen()
		defaultRegistry.resources = append(defaultRegistry.resources, r)
		logger.Infof("Resource opened name=%s", p.Name())
	}
}

// CloseResources 逆序关闭资源
func CloseResources() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	for i := len(defaultRegistry.resources) - 1; i >= 0; i-- {
		defaultRegistry.resources[i].Close()
	}
	defaultRegistry.resources = nil
}

// MustInitComponents 创建并启动全部组件
func MustInitComponents(deps *Dependencies) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	for _, p := range defaultRegistry.componentPlugins {
		c := p.MustCreateComponent(deps)
		if c == nil {
			logger.Infof("Component skipped name=%s", p.Name())
			continue
		}
		if err := c.Start(); err != nil {
			panic(fmt.Sprintf("failed to start component %s: %v", p.Name(), err))
		}
		defaultRegistry.components = append(defaultRegistry.components, c)
		logger.Infof("Component started name=%s", c.GetName())
	}
}

// RegisterAllRoutes 注册全部路由
func RegisterAllRoutes(engine *gin.Engine, deps *Dependencies) {
	defaultRegistry.mu.Lock()
	plugins := append([]RoutePlugin(nil), defaultRegistry.routePlugins...)
	defaultRegistry.mu.Unlock()
	for _, p := range plugins {
		p.RegisterRoutes(engine, deps)
		logger.Infof("Routes registered plugin=%s", p.Name())
	}
}

// Shutdown 逆序停止组件
func Shutdown() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	for i := len(defaultRegistry.components) - 1; i >= 0; i-- {
		c := defaultRegistry.components[i]
		if err := c.Stop(); err != nil {
			logger.Warnf("Component stop failed name=%s error=%v", c.GetName(), err)
		}
	}
	defaultRegistry.components = nil
}
