package api

import (
	"net/http"

	_ "github.com/aalbahar80/rems-ai-sub000/docs" // 导入生成的 docs 包
	"github.com/aalbahar80/rems-ai-sub000/internal/auth"
	"github.com/aalbahar80/rems-ai-sub000/internal/config"
	"github.com/aalbahar80/rems-ai-sub000/internal/service"
	"github.com/aalbahar80/rems-ai-sub000/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// RouterDeps 路由依赖
type RouterDeps struct {
	Config       *config.Config
	DB           *gorm.DB
	OrderService service.MaintenanceOrderService
	Logger       logrus.FieldLogger
	// Hub 为 nil 时不挂载 WebSocket 路由
	Hub *websocket.Hub
	// Tracing 为 true 时挂载 otelgin 中间件
	Tracing bool
}

// SetupRoutes 配置路由
func SetupRoutes(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestLogMiddleware(logger))
	if deps.Tracing {
		router.Use(TracingMiddleware())
	}
	router.Use(SecurityHeadersMiddleware(config.IsProduction(cfg)))
	router.Use(CORSMiddleware(cfg.CORS))
	router.Use(ErrorHandlerMiddleware())

	// 健康检查与指标不限流、不认证
	router.GET("/health", NewHealthController(deps.DB).Check)
	router.GET("/metrics", MetricsHandler)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var validator *auth.TokenValidator
	if cfg.Auth.JWTSecret != "" {
		validator = auth.NewTokenValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	} else {
		logger.Warn("auth.jwt_secret is empty, API authentication is disabled")
	}

	// WebSocket 在浏览器中无法设置 Authorization 头,token 走 query 参数
	if deps.Hub != nil {
		router.GET("/ws/maintenance-orders/:id", websocket.WebSocketHandler(deps.Hub, deps.OrderService, websocket.HandlerOptions{
			Validator:      validator,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}))
	}

	v1 := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	if validator != nil {
		v1.Use(auth.JWTAuthMiddleware(validator))
	}

	orders := NewMaintenanceOrderController(deps.OrderService)
	mo := v1.Group("/maintenance-orders")
	{
		mo.POST("", orders.Create)
		mo.GET("", orders.List)
		mo.GET("/statistics", orders.Statistics)
		mo.GET("/:id", orders.Get)
		mo.GET("/:id/history", orders.History)
		mo.GET("/:id/transitions", orders.Transitions)
		mo.POST("/:id/assign-vendor", orders.AssignVendor)
		mo.PATCH("/:id/status", orders.UpdateStatus)
		mo.POST("/:id/approve", orders.Approve)
	}

	// 未匹配的路由返回 JSON 格式的 404
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, CodeNotFound, "route not found", nil)
	})

	return router
}
