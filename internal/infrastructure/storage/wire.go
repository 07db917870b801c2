package storage

import (
	"github.com/google/wire"

	domainNotification "github.com/timepulse/backend/internal/domain/notification"
)

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,                   // 提供数据库连接
	NewNotificationRepository,   // 通知仓储
	NewMemberRepository,         // 租户成员仓储
	wire.Bind(new(domainNotification.Repository), new(*NotificationRepository)),
	wire.Bind(new(domainNotification.Directory), new(*MemberRepository)),
)
