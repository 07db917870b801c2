package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MockToken 开发环境使用的固定凭证
const MockToken = "mock-jwt-token"

// ErrAuthentication 握手认证失败
var ErrAuthentication = errors.New("authentication failed")

// AuthenticationError 带原因的认证失败
type AuthenticationError struct {
	Reason string
}

// NewAuthenticationError 创建认证错误
func NewAuthenticationError(format string, args ...any) *AuthenticationError {
	return &AuthenticationError{Reason: fmt.Sprintf(format, args...)}
}

// Error 实现 error 接口
func (e *AuthenticationError) Error() string {
	return ErrAuthentication.Error() + ": " + e.Reason
}

// Is 使 errors.Is(err, ErrAuthentication) 成立
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// AuthMethod 握手凭证，只有 MockAuth 和 BearerAuth 两种
type AuthMethod interface {
	authMethod()
}

// MockAuth 开发环境的模拟身份
type MockAuth struct {
	UserID   string
	TenantID string
}

// BearerAuth 签名令牌
type BearerAuth struct {
	Token string
}

func (MockAuth) authMethod()   {}
func (BearerAuth) authMethod() {}

// Claims 经过验证的身份
type Claims struct {
	UserID   string
	TenantID string
}

// Identity 客户端声明的身份，只用于与 Claims 比对
type Identity struct {
	UserID   string
	TenantID string
}

// Authenticator 凭证校验（外部协作者）
type Authenticator interface {
	Authenticate(ctx context.Context, method AuthMethod) (*Claims, error)
}

// AuthPayload auth 事件的载荷
type AuthPayload struct {
	Token    string    `json:"token"`
	UserInfo *UserInfo `json:"userInfo,omitempty"`
}

// UserInfo 客户端声明的用户信息
type UserInfo struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
}

// ParseAuthPayload 把原始握手载荷转换为 AuthMethod 和声明身份
// fallbackToken 来自升级请求的 Authorization 头，载荷未携带令牌时使用
func ParseAuthPayload(raw json.RawMessage, fallbackToken string) (AuthMethod, *Identity, error) {
	var p AuthPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, nil, NewAuthenticationError("malformed auth payload")
		}
	}

	token := strings.TrimSpace(p.Token)
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(fallbackToken, "Bearer "))
	}
	if token == "" {
		return nil, nil, NewAuthenticationError("no token provided")
	}

	var claimed *Identity
	if p.UserInfo != nil {
		claimed = &Identity{UserID: p.UserInfo.ID, TenantID: p.UserInfo.TenantID}
	}

	if token == MockToken {
		if claimed == nil || claimed.UserID == "" || claimed.TenantID == "" {
			return nil, nil, NewAuthenticationError("no user info provided")
		}
		return MockAuth{UserID: claimed.UserID, TenantID: claimed.TenantID}, claimed, nil
	}
	return BearerAuth{Token: token}, claimed, nil
}
