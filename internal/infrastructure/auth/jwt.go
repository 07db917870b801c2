package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/timepulse/backend/internal/domain/realtime"
	"github.com/timepulse/backend/internal/infrastructure/config"
)

// DefaultTokenTTL 签发令牌的默认有效期
const DefaultTokenTTL = 24 * time.Hour

// TokenClaims JWT 载荷
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
}

// JWTAuthenticator HS256 令牌校验
type JWTAuthenticator struct {
	secret []byte
	issuer string
}

// NewJWTAuthenticator 创建 JWT 校验器
func NewJWTAuthenticator(cfg *config.AuthConfig) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
	}
}

// GenerateToken 签发令牌
func (a *JWTAuthenticator) GenerateToken(userID, tenantID string, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   userID,
		TenantID: tenantID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify 校验令牌并返回身份
func (a *JWTAuthenticator) Verify(tokenString string) (*realtime.Claims, error) {
	if len(a.secret) == 0 {
		return nil, realtime.NewAuthenticationError("jwt secret is not configured")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, realtime.NewAuthenticationError("invalid token")
	}
	if claims.UserID == "" || claims.TenantID == "" {
		return nil, realtime.NewAuthenticationError("token missing userId or tenantId")
	}

	return &realtime.Claims{UserID: claims.UserID, TenantID: claims.TenantID}, nil
}

// Authenticate 实现 realtime.Authenticator，只接受 BearerAuth
func (a *JWTAuthenticator) Authenticate(_ context.Context, method realtime.AuthMethod) (*realtime.Claims, error) {
	bearer, ok := method.(realtime.BearerAuth)
	if !ok {
		return nil, realtime.NewAuthenticationError("unsupported auth method")
	}
	return a.Verify(bearer.Token)
}
