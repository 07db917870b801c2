package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/timepulse/backend/internal/domain/realtime"
	"github.com/timepulse/backend/internal/infrastructure/log"
	"github.com/timepulse/backend/internal/interfaces/http/response"
)

// 模拟认证时携带身份的请求头
const (
	HeaderUserID   = "X-User-ID"
	HeaderTenantID = "X-Tenant-ID"
)

const claimsKey = "timepulse.claims"

// Auth 校验 Authorization 头并把身份写入上下文
// mock token 需配合 X-User-ID / X-Tenant-ID，是否接受由认证器决定
func Auth(authenticator realtime.Authenticator) gin.HandlerFunc {
	logger := log.NewModuleLogger("http", "auth")
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		var method realtime.AuthMethod = realtime.BearerAuth{Token: token}
		if token == realtime.MockToken {
			method = realtime.MockAuth{
				UserID:   c.GetHeader(HeaderUserID),
				TenantID: c.GetHeader(HeaderTenantID),
			}
		}

		claims, err := authenticator.Authenticate(c.Request.Context(), method)
		if err != nil {
			log.FromContext(c.Request.Context(), logger).Debug("request rejected", "error", err)
			response.ErrorWithDetail(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication failed", err.Error())
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		ctx := log.WithTenantID(log.WithUserID(c.Request.Context(), claims.UserID), claims.TenantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ClaimsFrom 读取 Auth 写入的身份
func ClaimsFrom(c *gin.Context) (*realtime.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*realtime.Claims)
	return claims, ok && claims != nil
}
