package notification

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Content 通知内容，由触发方提供
type Content struct {
	Title     string         `json:"title" validate:"required,max=255"`
	Message   string         `json:"message" validate:"required"`
	Type      Type           `json:"type" validate:"omitempty,oneof=info success warning error"`
	Category  string         `json:"category" validate:"omitempty,max=50"`
	Priority  Priority       `json:"priority" validate:"omitempty,oneof=low medium high"`
	ActionURL string         `json:"actionUrl,omitempty" validate:"omitempty,max=500"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
}

// Service 领域服务（纯业务逻辑）
type Service struct {
	validate *validator.Validate
}

// NewService 创建领域服务
func NewService() *Service {
	return &Service{validate: validator.New()}
}

// WithDefaults 填充默认的类型、分类和优先级
func (c Content) WithDefaults() Content {
	if c.Type == "" {
		c.Type = TypeInfo
	}
	if strings.TrimSpace(c.Category) == "" {
		c.Category = DefaultCategory
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	return c
}

// ValidateContent 校验通知内容（领域规则）
func (s *Service) ValidateContent(c Content) error {
	if err := s.validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidContent, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return nil
}

// Validate 校验完整通知
func (s *Service) Validate(n *Notification) error {
	if strings.TrimSpace(n.TenantID) == "" {
		return ErrMissingTenant
	}
	return s.ValidateContent(Content{
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Category:  n.Category,
		Priority:  n.Priority,
		ActionURL: n.ActionURL,
	})
}

// Render 为一个接收人生成通知实体
func (s *Service) Render(tenantID, userID string, c Content, now time.Time) *Notification {
	c = c.WithDefaults()
	var metadata map[string]any
	if len(c.Metadata) > 0 {
		metadata = make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			metadata[k] = v
		}
	}
	var expiresAt *time.Time
	if c.ExpiresAt != nil {
		t := *c.ExpiresAt
		expiresAt = &t
	}
	return &Notification{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		UserID:    userID,
		Title:     c.Title,
		Message:   c.Message,
		Type:      c.Type,
		Category:  c.Category,
		Priority:  c.Priority,
		ActionURL: c.ActionURL,
		Metadata:  metadata,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
}
