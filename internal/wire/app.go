package wire

import (
	"context"
	"log/slog"

	"github.com/timepulse/backend/internal/application/notification"
	"github.com/timepulse/backend/internal/infrastructure/config"
	applog "github.com/timepulse/backend/internal/infrastructure/log"
	"github.com/timepulse/backend/internal/infrastructure/websocket"
	"github.com/timepulse/backend/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer *interfaces.HTTPServer
	wsServer   *websocket.Server
	cleaner    *notification.Cleaner
	serverCfg  *config.ServerConfig
	authCfg    *config.AuthConfig
	logger     *slog.Logger

	errCh chan error
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	wsServer *websocket.Server,
	cleaner *notification.Cleaner,
	serverCfg *config.ServerConfig,
	authCfg *config.AuthConfig,
) *App {
	return &App{
		HTTPServer: httpServer,
		wsServer:   wsServer,
		cleaner:    cleaner,
		serverCfg:  serverCfg,
		authCfg:    authCfg,
		logger:     applog.NewModuleLogger("app", "main"),
		errCh:      make(chan error, 1),
	}
}

// Start 启动所有服务
func (a *App) Start() error {
	a.logger.Info("Starting TimePulse notification service",
		"port", a.serverCfg.HTTPPort,
		"allowed_origins", a.serverCfg.AllowedOrigins,
	)

	if a.authCfg.JWTSecret == "" {
		a.logger.Warn("JWT secret is empty, bearer tokens will be rejected")
	}

	// 过期通知清理，默认关闭，CleanupInterval > 0 时才启动
	a.cleaner.Start()

	// 启动 HTTP 服务器（goroutine）
	go func() {
		if err := a.HTTPServer.Start(); err != nil {
			a.logger.Error("HTTP server stopped unexpectedly",
				"error", err,
			)
			a.errCh <- err
		}
	}()

	a.logger.Info("TimePulse notification service started")
	return nil
}

// Errors HTTP 服务器异常退出时收到错误
func (a *App) Errors() <-chan error {
	return a.errCh
}

// Stop 停止所有服务；数据库由 InitializeAll 返回的 cleanup 关闭
func (a *App) Stop(ctx context.Context) error {
	a.logger.Info("Stopping TimePulse notification service")

	var firstErr error
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.logger.Error("Failed to stop HTTP server",
			"error", err,
		)
		firstErr = err
	}

	// 关闭仍在线的 WebSocket 连接
	a.wsServer.Close()

	a.cleaner.Stop()

	a.logger.Info("TimePulse notification service stopped")
	return firstErr
}
