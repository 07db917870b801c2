package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timepulse/backend/internal/application/notification"
	domainNotification "github.com/timepulse/backend/internal/domain/notification"
	"github.com/timepulse/backend/internal/interfaces/http/middleware"
	"github.com/timepulse/backend/internal/interfaces/http/response"
)

// NotificationHandler 通知处理器
type NotificationHandler struct {
	service *notification.Service
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(service *notification.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// listRequest 列表查询参数
type listRequest struct {
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset      int    `form:"offset" binding:"omitempty,min=0"`
	Category    string `form:"category"`
	Type        string `form:"type" binding:"omitempty,oneof=info success warning error"`
	Priority    string `form:"priority" binding:"omitempty,oneof=low medium high"`
	IncludeRead *bool  `form:"includeRead"`
}

// targetRequest 目标选择器
type targetRequest struct {
	Kind   string   `json:"kind" binding:"required,oneof=user tenant roles"`
	UserID string   `json:"userId"`
	Roles  []string `json:"roles"`
}

// createRequest 发布请求：直接内容或模板二选一
type createRequest struct {
	Target   *targetRequest                  `json:"target"`
	Template string                          `json:"template"`
	Vars     domainNotification.TemplateVars `json:"vars"`

	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Category  string         `json:"category"`
	Priority  string         `json:"priority"`
	ActionURL string         `json:"actionUrl"`
	Metadata  map[string]any `json:"metadata"`
	ExpiresAt *time.Time     `json:"expiresAt"`
}

func (r *createRequest) content() domainNotification.Content {
	return domainNotification.Content{
		Title:     r.Title,
		Message:   r.Message,
		Type:      domainNotification.Type(r.Type),
		Category:  r.Category,
		Priority:  domainNotification.Priority(r.Priority),
		ActionURL: r.ActionURL,
		Metadata:  r.Metadata,
		ExpiresAt: r.ExpiresAt,
	}
}

// PublishResult 发布结果
type PublishResult struct {
	Count         int                             `json:"count"`
	Notifications []*notification.NotificationDTO `json:"notifications"`
}

// List 分页查询当前用户的通知
// @Summary 通知列表
// @Tags 通知
// @Produce json
// @Param limit query int false "每页条数，默认 20"
// @Param offset query int false "偏移量"
// @Param category query string false "分类"
// @Param type query string false "类型"
// @Param priority query string false "优先级"
// @Param includeRead query bool false "是否包含已读，默认 true"
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	var req listRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeBadParam, "invalid query", err.Error())
		return
	}

	includeRead := true
	if req.IncludeRead != nil {
		includeRead = *req.IncludeRead
	}

	result, err := h.service.List(c.Request.Context(), claims.TenantID, claims.UserID, notification.ListQuery{
		Category:    req.Category,
		Type:        req.Type,
		Priority:    req.Priority,
		IncludeRead: includeRead,
		Limit:       req.Limit,
		Offset:      req.Offset,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

// UnreadCount 未读数量
// @Summary 未读数量
// @Tags 通知
// @Produce json
// @Success 200 {object} response.Response
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"unreadCount": count})
}

// MarkRead 标记单条已读
// @Summary 标记已读
// @Tags 通知
// @Param id path string true "通知 ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), c.Param("id"), claims.TenantID, claims.UserID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": c.Param("id")})
}

// MarkAllRead 全部标记已读
// @Summary 全部已读
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /notifications/mark-all-read [patch]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	updated, err := h.service.MarkAllRead(c.Request.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": updated})
}

// Delete 删除通知
// @Summary 删除通知
// @Tags 通知
// @Param id path string true "通知 ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.TenantID, claims.UserID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": c.Param("id")})
}

// Create 在调用方租户内发布通知
// @Summary 发布通知
// @Tags 通知
// @Accept json
// @Produce json
// @Param body body createRequest true "目标与内容，或目标与模板"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeBadParam, "invalid request body", err.Error())
		return
	}

	var target domainNotification.Target
	if req.Target != nil {
		t, err := domainNotification.ParseTarget(req.Target.Kind, req.Target.UserID, req.Target.Roles)
		if err != nil {
			response.FromError(c, err)
			return
		}
		target = t
	}

	ctx := c.Request.Context()
	var (
		items []*domainNotification.Notification
		err   error
	)
	if req.Template != "" {
		items, err = h.service.PublishTemplate(ctx, claims.TenantID, target, req.Template, req.Vars)
	} else {
		if req.Target == nil {
			response.Error(c, http.StatusBadRequest, response.CodeInvalidTarget, "target is required")
			return
		}
		items, err = h.service.Publish(ctx, claims.TenantID, target, req.content())
	}
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, PublishResult{
		Count:         len(items),
		Notifications: notification.ToDTOs(items),
	})
}
