package websocket

import (
	"github.com/google/wire"

	"github.com/timepulse/backend/internal/domain/realtime"
)

// ProviderSet WebSocket 基础设施 ProviderSet
var ProviderSet = wire.NewSet(
	NewRegistry,
	wire.Bind(new(realtime.Registry), new(*Registry)),
	NewServer,
)
