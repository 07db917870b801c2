package application

import (
	"github.com/google/wire"

	"github.com/timepulse/backend/internal/application/notification"
	"github.com/timepulse/backend/internal/application/realtime"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	notification.ProviderSet,
	realtime.ProviderSet,
)
