package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/timepulse/backend/internal/infrastructure/config"
	"github.com/timepulse/backend/internal/infrastructure/log"
)

// Cleaner 定时清理过期通知
type Cleaner struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCleaner 创建清理器
func NewCleaner(service *Service, cfg *config.NotificationConfig) *Cleaner {
	return &Cleaner{
		service:  service,
		interval: cfg.CleanupInterval,
		logger:   log.NewModuleLogger("notification", "cleaner"),
	}
}

// Start 启动后台清理，间隔为 0 时不启动
func (c *Cleaner) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.interval <= 0 || c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(ctx, c.done)
	c.logger.Info("cleaner started", "interval", c.interval.String())
}

func (c *Cleaner) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.service.CleanupExpired(ctx, ""); err != nil {
				c.logger.Warn("failed to clean up expired notifications", "error", err)
			}
		}
	}
}

// Stop 停止清理并等待退出
func (c *Cleaner) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	c.logger.Info("cleaner stopped")
}
