package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/timepulse/backend/internal/application/notification"
	domainNotification "github.com/timepulse/backend/internal/domain/notification"
	"github.com/timepulse/backend/internal/domain/realtime"
	"github.com/timepulse/backend/internal/infrastructure/log"
)

// RegistryPusher 通过连接注册表推送通知
type RegistryPusher struct {
	registry realtime.Registry
	logger   *slog.Logger
	now      func() time.Time
}

// NewRegistryPusher 创建推送器
func NewRegistryPusher(registry realtime.Registry) *RegistryPusher {
	return &RegistryPusher{
		registry: registry,
		logger:   log.NewModuleLogger("notification", "pusher"),
		now:      time.Now,
	}
}

// PushToUser 推送到用户的全部在线连接，返回成功入队的连接数
// 单个连接失败不影响其余连接
func (p *RegistryPusher) PushToUser(ctx context.Context, userID string, n *domainNotification.Notification) (int, error) {
	conns := p.registry.FindByIdentity(userID)
	if len(conns) == 0 {
		return 0, nil
	}

	event, err := realtime.NewEvent(realtime.EventNotification, notification.ToDTO(n), p.now())
	if err != nil {
		return 0, err
	}

	logger := log.FromContext(ctx, p.logger)
	delivered := 0
	for _, conn := range conns {
		// 租户不匹配的连接不投递
		if conn.TenantID != n.TenantID {
			continue
		}
		if err := conn.Send(event); err != nil {
			logger.Warn("failed to enqueue notification",
				"connection_id", conn.ID,
				"notification_id", n.ID,
				"error", err,
			)
			continue
		}
		delivered++
	}
	return delivered, nil
}

// 编译时检查接口实现
var _ notification.Pusher = (*RegistryPusher)(nil)
