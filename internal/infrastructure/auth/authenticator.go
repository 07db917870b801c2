package auth

import (
	"context"
	"log/slog"

	"github.com/timepulse/backend/internal/domain/realtime"
	"github.com/timepulse/backend/internal/infrastructure/config"
	"github.com/timepulse/backend/internal/infrastructure/log"
)

// Authenticator 按凭证类型分派：Bearer 走 JWT，Mock 仅在配置允许时接受
type Authenticator struct {
	jwt       *JWTAuthenticator
	allowMock bool
	logger    *slog.Logger
}

var _ realtime.Authenticator = (*Authenticator)(nil)

// NewAuthenticator 创建认证器
func NewAuthenticator(cfg *config.AuthConfig, jwtAuth *JWTAuthenticator) *Authenticator {
	a := &Authenticator{
		jwt:       jwtAuth,
		allowMock: cfg.AllowMock,
		logger:    log.NewModuleLogger("auth", "authenticator"),
	}
	if a.allowMock {
		a.logger.Warn("mock authentication is enabled, do not use in production")
	}
	return a
}

// Authenticate 校验凭证
func (a *Authenticator) Authenticate(ctx context.Context, method realtime.AuthMethod) (*realtime.Claims, error) {
	switch m := method.(type) {
	case realtime.BearerAuth:
		return a.jwt.Authenticate(ctx, m)
	case realtime.MockAuth:
		if !a.allowMock {
			return nil, realtime.NewAuthenticationError("mock authentication is disabled")
		}
		if m.UserID == "" || m.TenantID == "" {
			return nil, realtime.NewAuthenticationError("no user info provided")
		}
		return &realtime.Claims{UserID: m.UserID, TenantID: m.TenantID}, nil
	default:
		return nil, realtime.NewAuthenticationError("unsupported auth method")
	}
}
