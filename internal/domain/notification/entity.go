package notification

import "time"

// Notification 通知实体
// 每条通知属于且仅属于一个租户；广播类通知按接收人逐条落库
type Notification struct {
	ID        string
	TenantID  string
	UserID    string // 为空表示未指定接收人
	Title     string
	Message   string
	Type      Type
	Category  string
	Priority  Priority
	ActionURL string
	Metadata  map[string]any
	CreatedAt time.Time
	ReadAt    *time.Time // nil 表示未读，只能被设置一次
	ExpiresAt *time.Time
}

// Type 通知类型
type Type string

const (
	// TypeInfo 信息通知
	TypeInfo Type = "info"
	// TypeSuccess 成功通知
	TypeSuccess Type = "success"
	// TypeWarning 警告通知
	TypeWarning Type = "warning"
	// TypeError 错误通知
	TypeError Type = "error"
)

// Priority 通知优先级
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultCategory 未指定分类时使用
const DefaultCategory = "general"

// IsRead 是否已读
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// IsExpired 在 now 时刻是否已过期
func (n *Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && !now.Before(*n.ExpiresAt)
}

// IsUnread 未读且未过期
func (n *Notification) IsUnread(now time.Time) bool {
	return !n.IsRead() && !n.IsExpired(now)
}

// MarkRead 标记为已读，已读状态下不修改 ReadAt
// 返回是否发生了状态变化
func (n *Notification) MarkRead(at time.Time) bool {
	if n.ReadAt != nil {
		return false
	}
	t := at
	n.ReadAt = &t
	return true
}

// Filter 列表过滤条件
type Filter struct {
	Category string
	Type     Type
	Priority Priority
	// UnreadOnly 为 true 时排除已读通知，默认包含已读
	UnreadOnly bool
}

// 分页默认值
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination 分页参数
type Pagination struct {
	Limit  int
	Offset int
}

// Normalize 规范化分页参数
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Page 分页结果
type Page struct {
	Items   []*Notification
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// NewPage 根据总数计算 HasMore
func NewPage(items []*Notification, total int, p Pagination) *Page {
	if items == nil {
		items = []*Notification{}
	}
	return &Page{
		Items:   items,
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: total > p.Offset+len(items),
	}
}
