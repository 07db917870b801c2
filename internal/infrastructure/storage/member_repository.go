package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	domainNotification "github.com/timepulse/backend/internal/domain/notification"
)

// Member 租户成员
type Member struct {
	TenantID  string `db:"tenant_id" yaml:"-"`
	UserID    string `db:"user_id" yaml:"user_id"`
	Role      string `db:"role" yaml:"role"`
	CreatedAt int64  `db:"created_at" yaml:"-"`
}

// MemberRepository 租户与角色成员 SQLite 实现
// 为投递路由提供 TenantDirectory 和 RoleMembership
type MemberRepository struct {
	db *sqlx.DB
}

var _ domainNotification.Directory = (*MemberRepository)(nil)

// NewMemberRepository 创建成员仓储实例
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// AddTenant 创建租户，已存在时更新名称
func (r *MemberRepository) AddTenant(ctx context.Context, id, name string) error {
	query := `
		INSERT INTO tenants (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`
	if _, err := r.db.ExecContext(ctx, query, id, name, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to save tenant %s: %w", id, err)
	}
	return nil
}

// AddMember 添加成员，已存在时更新角色
func (r *MemberRepository) AddMember(ctx context.Context, tenantID, userID, role string) error {
	query := `
		INSERT INTO tenant_members (tenant_id, user_id, role, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(tenant_id, user_id) DO UPDATE SET role = excluded.role`
	if _, err := r.db.ExecContext(ctx, query, tenantID, userID, role, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to save member %s/%s: %w", tenantID, userID, err)
	}
	return nil
}

// RemoveMember 移除成员
func (r *MemberRepository) RemoveMember(ctx context.Context, tenantID, userID string) error {
	query := `DELETE FROM tenant_members WHERE tenant_id = ? AND user_id = ?`
	if _, err := r.db.ExecContext(ctx, query, tenantID, userID); err != nil {
		return fmt.Errorf("failed to remove member %s/%s: %w", tenantID, userID, err)
	}
	return nil
}

// ListMembers 租户成员及角色
func (r *MemberRepository) ListMembers(ctx context.Context, tenantID string) ([]Member, error) {
	var members []Member
	query := `SELECT tenant_id, user_id, role, created_at FROM tenant_members WHERE tenant_id = ? ORDER BY user_id`
	if err := r.db.SelectContext(ctx, &members, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// TenantExists 租户是否存在
func (r *MemberRepository) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tenants WHERE id = ?`, tenantID); err != nil {
		return false, fmt.Errorf("failed to check tenant: %w", err)
	}
	return n > 0, nil
}

// Members 租户全部成员的用户 ID
func (r *MemberRepository) Members(ctx context.Context, tenantID string) ([]string, error) {
	userIDs := []string{}
	query := `SELECT user_id FROM tenant_members WHERE tenant_id = ? ORDER BY user_id`
	if err := r.db.SelectContext(ctx, &userIDs, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list tenant members: %w", err)
	}
	return userIDs, nil
}

// Resolve 租户内持有任一角色的用户 ID
func (r *MemberRepository) Resolve(ctx context.Context, tenantID string, roles []string) ([]string, error) {
	userIDs := []string{}
	if len(roles) == 0 {
		return userIDs, nil
	}

	query, args, err := sqlx.In(
		`SELECT DISTINCT user_id FROM tenant_members WHERE tenant_id = ? AND role IN (?) ORDER BY user_id`,
		tenantID, roles,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build role query: %w", err)
	}
	if err := r.db.SelectContext(ctx, &userIDs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to resolve roles: %w", err)
	}
	return userIDs, nil
}
