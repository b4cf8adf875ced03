package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	app "storefront-service/ddd/application/app"
	"storefront-service/internal/resource"
	"storefront-service/pkg/config"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/manager"
	"storefront-service/pkg/middleware"
	"storefront-service/pkg/observability"
	"storefront-service/pkg/registry"
	"storefront-service/pkg/task"

	_ "storefront-service/ddd/adapter/component"
	_ "storefront-service/ddd/adapter/http"
	_ "storefront-service/ddd/infrastructure/worker"
)

const serviceName = "storefront-service"

func Run() {
	// 先使用标准输出确保能看到日志
	fmt.Println("[STARTUP] Starting storefront service...")

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	// 设置全局配置（必须在资源管理器初始化之前）
	config.SetGlobalConfig(cfg)
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Debug("Logger initialized", map[string]interface{}{
		"level":  cfg.Log.Level,
		"format": cfg.Log.Format,
		"output": cfg.Log.Output,
	})

	observability.StartProfilingWith(serviceName, cfg.Observability.PyroscopeEnabled, cfg.Observability.PyroscopeAddress)
	defer observability.StopProfiling()

	if cfg.Admin.PasswordHash == "" {
		logger.Warn("admin.password_hash is empty, admin login is disabled")
	}

	logger.Infof("Initializing resource manager...")
	manager.MustInitResources()
	defer manager.CloseResources()
	logger.Infof("Resource manager initialized")

	deps := &manager.Dependencies{
		DB:         resource.DefaultMysqlResource().MainDB(),
		Config:     cfg,
		MediaApp:   app.DefaultMediaApp(),
		CatalogApp: app.DefaultCatalogApp(),
		AdminApp:   app.DefaultAdminApp(),
	}

	logger.Infof("Initializing components...")
	manager.MustInitComponents(deps)
	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	logger.Infof("All components initialized")

	// gRPC 只暴露健康检查，供网关与注册中心探活
	var grpcServer *grpc.Server
	var healthServer *health.Server
	grpcAddr := fmt.Sprintf("%s:%d", cfg.GRPCServer.Host, cfg.GRPCServer.Port)
	if cfg.GRPCServer.Enabled {
		grpcListener, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			logger.Fatal(fmt.Sprintf("Failed to listen on gRPC port address=%s error=%v", grpcAddr, err))
		}
		grpcServer = grpc.NewServer()
		healthServer = health.NewServer()
		healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
		healthpb.RegisterHealthServer(grpcServer, healthServer)

		go func() {
			logger.Infof("gRPC server started address=%s", grpcAddr)
			if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				logger.Errorf("gRPC server encountered an error error=%v", err)
			}
		}()
	}

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestContextMiddleware(), middleware.MetricsMiddleware())
	router.MaxMultipartMemory = cfg.Server.MaxMultipartMB << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   serviceName,
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	manager.RegisterAllRoutes(router, deps)

	port := getEnv("PORT", strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()
	logger.Infof("HTTP server started port=%s health_url=%s", port, fmt.Sprintf("http://localhost:%s/health", port))

	var reg *registry.ServiceRegistry
	if cfg.ServiceRegistry.Enabled {
		reg = mustRegister(cfg, port)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down server...")

	if reg != nil {
		if err := reg.Deregister(); err != nil {
			logger.Warnf("Deregister failed error=%v", err)
		}
	}
	if grpcServer != nil {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to close error=%v", err)
	}

	// 先停后台任务再停组件，进行中的删除会等待完成
	task.StopAll()
	manager.Shutdown()
	logger.Infof("Server exited safely")

	if logService != nil {
		logService.Close()
	}
	fmt.Println("[SHUTDOWN] Storefront service exited safely")
}

func mustRegister(cfg *config.Config, port string) *registry.ServiceRegistry {
	host := cfg.ServiceRegistry.RegisterHost
	if host == "" {
		host, _ = os.Hostname()
	}
	addr := net.JoinHostPort(host, port)
	reg, err := registry.NewServiceRegistry(cfg.Etcd, cfg.ServiceRegistry, addr)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to create service registry error=%v", err))
	}
	if err := reg.Register(); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to register service error=%v", err))
	}
	return reg
}

func ginMode(mode string) string {
	switch strings.ToLower(mode) {
	case gin.ReleaseMode, "prod", "production":
		return gin.ReleaseMode
	case gin.TestMode:
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// resolveConfigPath 根据环境选择配置文件，支持CONFIG_PATH覆盖、CONFIG_ENV区分环境
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config.prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
