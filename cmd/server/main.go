// @title TimePulse Notification API
// @version 1.0
// @description 多租户实时通知服务 API
// @host localhost:5001
// @BasePath /api/v1
// @schemes http
package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/timepulse/backend/internal/infrastructure/config"
	applog "github.com/timepulse/backend/internal/infrastructure/log"
	"github.com/timepulse/backend/internal/infrastructure/singleton"
	"github.com/timepulse/backend/internal/wire"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env 中的变量不覆盖已存在的环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	// 初始化日志系统
	applog.Init(nil)
	logger := applog.GetLogger()

	// 单例锁检查
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	listener, err := singleton.CheckAndLock(cfg.Server.HTTPPort)
	if err != nil {
		logger.Error("Port check failed", "port", cfg.Server.HTTPPort, "error", err)
		os.Exit(1)
	}
	if listener == nil {
		logger.Info("Another instance is already running, exiting", "port", cfg.Server.HTTPPort)
		os.Exit(0)
	}
	// 实际监听由 HTTP 服务器负责
	_ = listener.Close()

	// Wire 生成的初始化函数
	app, cleanup, err := wire.InitializeAll()
	if err != nil {
		logger.Error("Failed to initialize application",
			"error", err,
		)
		os.Exit(1)
	}
	defer cleanup()

	if err := app.Start(); err != nil {
		logger.Error("Failed to start application",
			"error", err,
		)
		os.Exit(1)
	}

	// 优雅关闭
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Shutting down application...", "signal", sig.String())
	case err := <-app.Errors():
		logger.Error("Shutting down after server failure", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		logger.Error("Error during application shutdown",
			"error", err,
		)
	}
	logger.Info("Application stopped")
}
