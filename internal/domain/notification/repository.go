package notification

import (
	"context"
	"time"
)

// Repository 通知仓储接口，是通知存在性、已读状态与计数的唯一来源
type Repository interface {
	// Create 写入单条通知，失败时不留下任何数据
	Create(ctx context.Context, n *Notification) error

	// CreateBatch 在同一事务中写入多条通知，全部成功或全部失败
	CreateBatch(ctx context.Context, items []*Notification) error

	// FindByOwner 按 ID 查找属于 tenantID/userID 的通知，不存在返回 ErrNotFound
	FindByOwner(ctx context.Context, id, tenantID, userID string) (*Notification, error)

	// List 分页查询，排除在 now 时刻已过期的通知
	List(ctx context.Context, tenantID, userID string, filter Filter, page Pagination, now time.Time) (*Page, error)

	// CountUnread 未读且未过期的通知数量
	CountUnread(ctx context.Context, tenantID, userID string, now time.Time) (int, error)

	// MarkRead 标记单条已读，已读时保持原 ReadAt；归属不匹配返回 ErrNotFound
	MarkRead(ctx context.Context, id, tenantID, userID string, at time.Time) error

	// MarkAllRead 将 at 时刻之前创建的未读通知标记为已读，返回影响行数
	MarkAllRead(ctx context.Context, tenantID, userID string, at time.Time) (int, error)

	// Delete 删除通知；归属不匹配返回 ErrNotFound
	Delete(ctx context.Context, id, tenantID, userID string) error

	// DeleteExpired 删除 before 之前过期的通知，tenantID 为空表示全部租户
	DeleteExpired(ctx context.Context, tenantID string, before time.Time) (int, error)
}

// RoleMembership 角色成员查询（外部协作者）
type RoleMembership interface {
	// Resolve 返回租户内持有任一角色的用户 ID
	Resolve(ctx context.Context, tenantID string, roles []string) ([]string, error)
}

// TenantDirectory 租户成员查询（外部协作者）
type TenantDirectory interface {
	// TenantExists 租户是否存在
	TenantExists(ctx context.Context, tenantID string) (bool, error)
	// Members 租户当前全部成员的用户 ID
	Members(ctx context.Context, tenantID string) ([]string, error)
}

// Directory 组合接口，供投递路由使用
type Directory interface {
	RoleMembership
	TenantDirectory
}
