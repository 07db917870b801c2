package auth

import (
	"github.com/google/wire"

	"github.com/timepulse/backend/internal/domain/realtime"
)

// ProviderSet 认证基础设施 ProviderSet
var ProviderSet = wire.NewSet(
	NewJWTAuthenticator,
	NewAuthenticator,
	wire.Bind(new(realtime.Authenticator), new(*Authenticator)),
)
