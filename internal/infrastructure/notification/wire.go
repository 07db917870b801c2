package notification

import (
	"github.com/google/wire"

	"github.com/timepulse/backend/internal/application/notification"
)

// ProviderSet 通知基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	NewRegistryPusher,
	// 接口绑定：application.Pusher -> infrastructure.RegistryPusher
	wire.Bind(
		new(notification.Pusher),
		new(*RegistryPusher),
	),
)
