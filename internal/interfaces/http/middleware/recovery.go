package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timepulse/backend/internal/infrastructure/log"
	"github.com/timepulse/backend/internal/interfaces/http/response"
)

// Recovery 捕获 panic，记录日志并返回 500
func Recovery() gin.HandlerFunc {
	logger := log.NewModuleLogger("http", "recovery")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.FromContext(c.Request.Context(), logger).Error("panic recovered",
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"panic", r,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
					Code:    response.CodeInternal,
					Message: "internal server error",
				})
			}
		}()
		c.Next()
	}
}
