package notification

import "github.com/google/wire"

// ProviderSet 通知应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewService,
	NewCleaner,
	// Pusher 的实现绑定在 infrastructure/notification 中
)
