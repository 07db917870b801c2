package notification

import (
	"context"

	"github.com/timepulse/backend/internal/domain/notification"
)

// Pusher 实时推送接口（定义在 application 层）
// 实现只负责入队，不得阻塞；返回实际入队的连接数
type Pusher interface {
	PushToUser(ctx context.Context, userID string, n *notification.Notification) (int, error)
}
