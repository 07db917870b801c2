package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	domainNotification "github.com/timepulse/backend/internal/domain/notification"
)

// notificationRow notifications 表的一行
type notificationRow struct {
	ID        string         `db:"id"`
	TenantID  string         `db:"tenant_id"`
	UserID    sql.NullString `db:"user_id"`
	Title     string         `db:"title"`
	Message   string         `db:"message"`
	Type      string         `db:"type"`
	Category  string         `db:"category"`
	Priority  string         `db:"priority"`
	ActionURL sql.NullString `db:"action_url"`
	Metadata  sql.NullString `db:"metadata"`
	CreatedAt int64          `db:"created_at"`
	ReadAt    sql.NullInt64  `db:"read_at"`
	ExpiresAt sql.NullInt64  `db:"expires_at"`
}

const notificationColumns = `id, tenant_id, user_id, title, message, type, category, priority,
	action_url, metadata, created_at, read_at, expires_at`

// NotificationRepository 通知 SQLite 仓储实现
type NotificationRepository struct {
	db *sqlx.DB
}

var _ domainNotification.Repository = (*NotificationRepository)(nil)

// NewNotificationRepository 创建通知仓储实例
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// execer 同时满足 *sqlx.DB 和 *sqlx.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create 写入单条通知
func (r *NotificationRepository) Create(ctx context.Context, n *domainNotification.Notification) error {
	if err := insertNotification(ctx, r.db, n); err != nil {
		return err
	}
	return nil
}

// CreateBatch 在同一事务中写入多条通知
func (r *NotificationRepository) CreateBatch(ctx context.Context, items []*domainNotification.Notification) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, n := range items {
		if err := insertNotification(ctx, tx, n); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit notifications: %w", err)
	}
	return nil
}

func insertNotification(ctx context.Context, ex execer, n *domainNotification.Notification) error {
	row, err := toRow(n)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notifications
		(id, tenant_id, user_id, title, message, type, category, priority,
		 action_url, metadata, created_at, read_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = ex.ExecContext(ctx, query,
		row.ID, row.TenantID, row.UserID, row.Title, row.Message,
		row.Type, row.Category, row.Priority, row.ActionURL, row.Metadata,
		row.CreatedAt, row.ReadAt, row.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification %s: %w", n.ID, err)
	}
	return nil
}

// FindByOwner 按 ID 和归属查找通知
func (r *NotificationRepository) FindByOwner(ctx context.Context, id, tenantID, userID string) (*domainNotification.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE id = ? AND tenant_id = ? AND user_id = ?`

	var row notificationRow
	if err := r.db.GetContext(ctx, &row, query, id, tenantID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainNotification.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query notification: %w", err)
	}
	return fromRow(&row)
}

// ownerFilter 构建归属与过期条件
func ownerFilter(tenantID, userID string, now time.Time) ([]string, []any) {
	where := []string{
		"tenant_id = ?",
		"user_id = ?",
		"(expires_at IS NULL OR expires_at > ?)",
	}
	args := []any{tenantID, userID, now.UnixMilli()}
	return where, args
}

// List 分页查询
func (r *NotificationRepository) List(ctx context.Context, tenantID, userID string, filter domainNotification.Filter, page domainNotification.Pagination, now time.Time) (*domainNotification.Page, error) {
	page = page.Normalize()
	where, args := ownerFilter(tenantID, userID, now)

	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, string(filter.Priority))
	}
	if filter.UnreadOnly {
		where = append(where, "read_at IS NULL")
	}
	whereSQL := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM notifications WHERE ` + whereSQL
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	listQuery := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE ` + whereSQL + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	listArgs := append(append([]any{}, args...), page.Limit, page.Offset)

	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, listArgs...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	items := make([]*domainNotification.Notification, 0, len(rows))
	for i := range rows {
		n, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}

	return domainNotification.NewPage(items, total, page), nil
}

// CountUnread 未读且未过期的数量
func (r *NotificationRepository) CountUnread(ctx context.Context, tenantID, userID string, now time.Time) (int, error) {
	where, args := ownerFilter(tenantID, userID, now)
	query := `SELECT COUNT(*) FROM notifications WHERE ` + strings.Join(where, " AND ") + ` AND read_at IS NULL`

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead 标记单条已读
// read_at 只会从 NULL 变为非 NULL，已读时不做修改
func (r *NotificationRepository) MarkRead(ctx context.Context, id, tenantID, userID string, at time.Time) error {
	query := `
		UPDATE notifications SET read_at = ?
		WHERE id = ? AND tenant_id = ? AND user_id = ? AND read_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, at.UnixMilli(), id, tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// 未更新：已读（幂等）或不存在/不属于调用方
	exists, err := r.exists(ctx, id, tenantID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domainNotification.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) exists(ctx context.Context, id, tenantID, userID string) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM notifications WHERE id = ? AND tenant_id = ? AND user_id = ?`
	if err := r.db.GetContext(ctx, &n, query, id, tenantID, userID); err != nil {
		return false, fmt.Errorf("failed to check notification: %w", err)
	}
	return n > 0, nil
}

// MarkAllRead 将 at 时刻及之前创建的未读通知标记为已读
func (r *NotificationRepository) MarkAllRead(ctx context.Context, tenantID, userID string, at time.Time) (int, error) {
	where, args := ownerFilter(tenantID, userID, at)
	where = append(where, "read_at IS NULL", "created_at <= ?")
	args = append(args, at.UnixMilli())

	query := `UPDATE notifications SET read_at = ? WHERE ` + strings.Join(where, " AND ")
	result, err := r.db.ExecContext(ctx, query, append([]any{at.UnixMilli()}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(affected), nil
}

// Delete 删除通知
func (r *NotificationRepository) Delete(ctx context.Context, id, tenantID, userID string) error {
	query := `DELETE FROM notifications WHERE id = ? AND tenant_id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, id, tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domainNotification.ErrNotFound
	}
	return nil
}

// DeleteExpired 删除 before 时刻已过期的通知
func (r *NotificationRepository) DeleteExpired(ctx context.Context, tenantID string, before time.Time) (int, error) {
	query := `DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at <= ?`
	args := []any{before.UnixMilli()}
	if tenantID != "" {
		query += ` AND tenant_id = ?`
		args = append(args, tenantID)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(affected), nil
}

// toRow 实体转数据库行
func toRow(n *domainNotification.Notification) (*notificationRow, error) {
	row := &notificationRow{
		ID:        n.ID,
		TenantID:  n.TenantID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Category:  n.Category,
		Priority:  string(n.Priority),
		CreatedAt: n.CreatedAt.UnixMilli(),
	}
	if n.UserID != "" {
		row.UserID = sql.NullString{String: n.UserID, Valid: true}
	}
	if n.ActionURL != "" {
		row.ActionURL = sql.NullString{String: n.ActionURL, Valid: true}
	}
	if len(n.Metadata) > 0 {
		data, err := json.Marshal(n.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		row.Metadata = sql.NullString{String: string(data), Valid: true}
	}
	if n.ReadAt != nil {
		row.ReadAt = sql.NullInt64{Int64: n.ReadAt.UnixMilli(), Valid: true}
	}
	if n.ExpiresAt != nil {
		row.ExpiresAt = sql.NullInt64{Int64: n.ExpiresAt.UnixMilli(), Valid: true}
	}
	return row, nil
}

// fromRow 数据库行转实体
func fromRow(row *notificationRow) (*domainNotification.Notification, error) {
	n := &domainNotification.Notification{
		ID:        row.ID,
		TenantID:  row.TenantID,
		UserID:    row.UserID.String,
		Title:     row.Title,
		Message:   row.Message,
		Type:      domainNotification.Type(row.Type),
		Category:  row.Category,
		Priority:  domainNotification.Priority(row.Priority),
		ActionURL: row.ActionURL.String,
		CreatedAt: time.UnixMilli(row.CreatedAt),
	}
	if row.Metadata.Valid && row.Metadata.String != "" {
		if err := json.Unmarshal([]byte(row.Metadata.String), &n.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata of %s: %w", row.ID, err)
		}
	}
	if row.ReadAt.Valid {
		t := time.UnixMilli(row.ReadAt.Int64)
		n.ReadAt = &t
	}
	if row.ExpiresAt.Valid {
		t := time.UnixMilli(row.ExpiresAt.Int64)
		n.ExpiresAt = &t
	}
	return n, nil
}
