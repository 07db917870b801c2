package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timepulse/backend/internal/domain/notification"
	"github.com/timepulse/backend/internal/domain/realtime"
)

// 业务错误码
const (
	CodeSuccess      = 0
	CodeBadParam     = 100001
	CodeUnauthorized = 100002
	CodeInternal     = 100004

	CodeNotificationNotFound = 110001
	CodeInvalidTarget        = 110002
	CodeTargetResolution     = 110003
	CodePersistence          = 110004
	CodeInvalidContent       = 110005
	CodeUnknownTemplate      = 110006

	CodeChannelForbidden = 120001
	CodeInvalidChannel   = 120002
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, message string) {
	c.JSON(httpCode, ErrorResponse{
		Code:    errCode,
		Message: message,
	})
}

// ErrorWithDetail 带详情的错误响应
func ErrorWithDetail(c *gin.Context, httpCode int, errCode int, message, detail string) {
	c.JSON(httpCode, ErrorResponse{
		Code:    errCode,
		Message: message,
		Detail:  detail,
	})
}

// FromError 按领域错误映射 HTTP 状态和业务码
func FromError(c *gin.Context, err error) {
	var pe *notification.PersistenceError
	switch {
	case errors.Is(err, notification.ErrNotFound):
		Error(c, http.StatusNotFound, CodeNotificationNotFound, "notification not found")
	case errors.Is(err, notification.ErrInvalidContent):
		ErrorWithDetail(c, http.StatusBadRequest, CodeInvalidContent, "invalid notification content", err.Error())
	case errors.Is(err, notification.ErrInvalidTarget):
		ErrorWithDetail(c, http.StatusBadRequest, CodeInvalidTarget, "invalid target", err.Error())
	case errors.Is(err, notification.ErrUnknownTemplate):
		ErrorWithDetail(c, http.StatusBadRequest, CodeUnknownTemplate, "unknown template", err.Error())
	case errors.Is(err, notification.ErrTargetResolution):
		ErrorWithDetail(c, http.StatusUnprocessableEntity, CodeTargetResolution, "failed to resolve recipients", err.Error())
	case errors.As(err, &pe):
		ErrorWithDetail(c, http.StatusInternalServerError, CodePersistence, "failed to store notifications", err.Error())
	case errors.Is(err, realtime.ErrAuthentication):
		ErrorWithDetail(c, http.StatusUnauthorized, CodeUnauthorized, "authentication failed", err.Error())
	case errors.Is(err, realtime.ErrChannelForbidden):
		ErrorWithDetail(c, http.StatusForbidden, CodeChannelForbidden, "channel forbidden", err.Error())
	case errors.Is(err, realtime.ErrInvalidChannel):
		ErrorWithDetail(c, http.StatusBadRequest, CodeInvalidChannel, "invalid channel", err.Error())
	default:
		ErrorWithDetail(c, http.StatusInternalServerError, CodeInternal, "internal server error", err.Error())
	}
}
