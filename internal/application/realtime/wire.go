package realtime

import (
	"github.com/google/wire"

	"github.com/timepulse/backend/internal/domain/realtime"
)

// ProviderSet 实时应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewService,
	wire.Bind(new(realtime.Session), new(*Service)),
)
