package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/timepulse/backend/docs" // Swagger docs
	"github.com/timepulse/backend/internal/domain/realtime"
	"github.com/timepulse/backend/internal/infrastructure/config"
	"github.com/timepulse/backend/internal/infrastructure/log"
	"github.com/timepulse/backend/internal/infrastructure/websocket"
	"github.com/timepulse/backend/internal/interfaces/http/handler"
	"github.com/timepulse/backend/internal/interfaces/http/middleware"
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router   *gin.Engine
	httpPort string
	server   *http.Server
	logger   *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	cfg *config.ServerConfig,
	authenticator realtime.Authenticator,
	notificationHandler *handler.NotificationHandler,
	realtimeHandler *handler.RealtimeHandler,
	healthHandler *handler.HealthHandler,
	wsServer *websocket.Server,
) *HTTPServer {
	router := NewRouter(cfg, authenticator, notificationHandler, realtimeHandler, healthHandler, wsServer)

	return &HTTPServer{
		router:   router,
		httpPort: cfg.HTTPPort,
		logger:   log.NewModuleLogger("http", "server"),
	}
}

// NewRouter 注册中间件与路由
func NewRouter(
	cfg *config.ServerConfig,
	authenticator realtime.Authenticator,
	notificationHandler *handler.NotificationHandler,
	realtimeHandler *handler.RealtimeHandler,
	healthHandler *handler.HealthHandler,
	wsServer *websocket.Server,
) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.CORS(cfg.AllowedOrigins),
	)

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(authenticator))
	{
		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("", middleware.EnsureUTF8Body(), notificationHandler.Create)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PATCH("/mark-all-read", notificationHandler.MarkAllRead)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.Delete)
		}

		rt := api.Group("/realtime")
		{
			rt.GET("/stats", realtimeHandler.Stats)
			rt.GET("/connections", realtimeHandler.Connections)
			rt.POST("/system-messages", middleware.EnsureUTF8Body(), realtimeHandler.SystemMessage)
		}
	}

	// WebSocket 在第一条消息中认证
	router.GET("/ws", gin.WrapF(wsServer.HandleConnection))

	// 健康检查
	router.GET("/health", healthHandler.Check)

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}

// Handler 返回路由，供测试使用
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start 启动服务器，阻塞直到关闭
func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:              s.httpPort,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP server starting",
		"port", s.httpPort,
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
