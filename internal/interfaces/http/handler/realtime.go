package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timepulse/backend/internal/application/realtime"
	"github.com/timepulse/backend/internal/interfaces/http/middleware"
	"github.com/timepulse/backend/internal/interfaces/http/response"
)

// RealtimeHandler 实时连接统计与系统消息
type RealtimeHandler struct {
	service *realtime.Service
}

// NewRealtimeHandler 创建处理器
func NewRealtimeHandler(service *realtime.Service) *RealtimeHandler {
	return &RealtimeHandler{service: service}
}

type systemMessageRequest struct {
	Message string `json:"message" binding:"required,max=1000"`
	Type    string `json:"type" binding:"omitempty,oneof=info success warning error"`
}

// Stats 调用方租户的在线统计
// @Summary 在线统计
// @Tags 实时
// @Produce json
// @Success 200 {object} response.Response
// @Router /realtime/stats [get]
func (h *RealtimeHandler) Stats(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	stats := h.service.TenantStats(claims.TenantID)
	response.Success(c, gin.H{
		"tenantId":        stats.TenantID,
		"connectionCount": stats.ConnectionCount,
		"userCount":       stats.UserCount,
		"connectedUsers":  stats.ConnectedUsers,
		"isConnected":     h.service.IsUserConnected(claims.UserID),
	})
}

// Connections 调用方租户的连接列表
// @Summary 连接列表
// @Tags 实时
// @Produce json
// @Success 200 {object} response.Response
// @Router /realtime/connections [get]
func (h *RealtimeHandler) Connections(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}
	response.Success(c, h.service.Connections(claims.TenantID))
}

// SystemMessage 向调用方租户广播系统消息（不落库）
// @Summary 系统消息
// @Tags 实时
// @Accept json
// @Produce json
// @Param body body systemMessageRequest true "消息"
// @Success 200 {object} response.Response
// @Router /realtime/system-messages [post]
func (h *RealtimeHandler) SystemMessage(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	var req systemMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeBadParam, "invalid request body", err.Error())
		return
	}

	delivered, err := h.service.BroadcastSystemMessage(c.Request.Context(), claims.TenantID, req.Message, req.Type)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeBadParam, "failed to send system message", err.Error())
		return
	}
	response.Success(c, gin.H{"delivered": delivered})
}
