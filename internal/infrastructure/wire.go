package infrastructure

import (
	"github.com/google/wire"

	"github.com/timepulse/backend/internal/infrastructure/auth"
	"github.com/timepulse/backend/internal/infrastructure/config"
	"github.com/timepulse/backend/internal/infrastructure/notification"
	"github.com/timepulse/backend/internal/infrastructure/storage"
	"github.com/timepulse/backend/internal/infrastructure/websocket"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	auth.ProviderSet,
	websocket.ProviderSet,
	notification.ProviderSet,
)
