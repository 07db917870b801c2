package notification

import (
	"time"

	"github.com/timepulse/backend/internal/domain/notification"
)

// NotificationDTO 通知响应（HTTP 与实时推送共用）
type NotificationDTO struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenantId"`
	UserID    string         `json:"userId,omitempty"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Category  string         `json:"category"`
	Priority  string         `json:"priority"`
	ActionURL string         `json:"actionUrl,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IsRead    bool           `json:"isRead"`
	CreatedAt string         `json:"createdAt"`
	ReadAt    *string        `json:"readAt,omitempty"`
	ExpiresAt *string        `json:"expiresAt,omitempty"`
}

// ListQuery 列表查询参数
type ListQuery struct {
	Category    string
	Type        string
	Priority    string
	IncludeRead bool
	Limit       int
	Offset      int
}

// ListResult 列表结果
type ListResult struct {
	Notifications []*NotificationDTO `json:"notifications"`
	Total         int                `json:"total"`
	Limit         int                `json:"limit"`
	Offset        int                `json:"offset"`
	HasMore       bool               `json:"hasMore"`
}

// ToDTO 转换为 DTO
func ToDTO(n *notification.Notification) *NotificationDTO {
	dto := &NotificationDTO{
		ID:        n.ID,
		TenantID:  n.TenantID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Category:  n.Category,
		Priority:  string(n.Priority),
		ActionURL: n.ActionURL,
		Metadata:  n.Metadata,
		IsRead:    n.IsRead(),
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if n.ReadAt != nil {
		s := n.ReadAt.UTC().Format(time.RFC3339Nano)
		dto.ReadAt = &s
	}
	if n.ExpiresAt != nil {
		s := n.ExpiresAt.UTC().Format(time.RFC3339Nano)
		dto.ExpiresAt = &s
	}
	return dto
}

// ToDTOs 批量转换
func ToDTOs(items []*notification.Notification) []*NotificationDTO {
	out := make([]*NotificationDTO, 0, len(items))
	for _, n := range items {
		out = append(out, ToDTO(n))
	}
	return out
}
