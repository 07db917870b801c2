package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/timepulse/backend/internal/domain/notification"
	"github.com/timepulse/backend/internal/infrastructure/log"
)

// Service 应用服务（用例编排）
// 发布流程：解析接收人 -> 事务写入 -> 尽力推送
type Service struct {
	domainRepo notification.Repository
	domainSvc  *notification.Service
	directory  notification.Directory
	pusher     Pusher
	logger     *slog.Logger
	now        func() time.Time
}

// NewService 创建应用服务
func NewService(
	domainRepo notification.Repository,
	domainSvc *notification.Service,
	directory notification.Directory,
	pusher Pusher,
) *Service {
	return &Service{
		domainRepo: domainRepo,
		domainSvc:  domainSvc,
		directory:  directory,
		pusher:     pusher,
		logger:     log.NewModuleLogger("notification", "service"),
		now:        time.Now,
	}
}

// Publish 发布通知（用例）
// 写入失败时整体失败并返回未通知到的接收人；推送失败只记录日志
func (s *Service) Publish(ctx context.Context, tenantID string, target notification.Target, content notification.Content) ([]*notification.Notification, error) {
	logger := log.FromContext(ctx, s.logger)

	if strings.TrimSpace(tenantID) == "" {
		return nil, notification.NewPersistenceError(nil, notification.ErrMissingTenant)
	}

	// 1. 校验内容
	if err := s.domainSvc.ValidateContent(content); err != nil {
		return nil, err
	}

	// 2. 解析接收人
	recipients, err := s.resolve(ctx, tenantID, target)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		logger.Info("target resolved to no recipients",
			"tenant_id", tenantID,
			"target", target.String(),
		)
		return []*notification.Notification{}, nil
	}

	// 3. 同一事务写入
	now := s.now()
	items := make([]*notification.Notification, 0, len(recipients))
	for _, userID := range recipients {
		items = append(items, s.domainSvc.Render(tenantID, userID, content, now))
	}
	if err := s.domainRepo.CreateBatch(ctx, items); err != nil {
		logger.Error("failed to persist notifications",
			"tenant_id", tenantID,
			"target", target.String(),
			"recipients", len(recipients),
			"error", err,
		)
		return nil, notification.NewPersistenceError(recipients, err)
	}

	logger.Info("notifications published",
		"tenant_id", tenantID,
		"target", target.String(),
		"recipients", len(items),
	)

	// 4. 尽力推送
	s.push(ctx, items)

	return items, nil
}

// PublishTemplate 按模板发布；审批模板未指定目标时发送给审批角色
func (s *Service) PublishTemplate(ctx context.Context, tenantID string, target notification.Target, name string, vars notification.TemplateVars) ([]*notification.Notification, error) {
	content, err := notification.RenderTemplate(name, vars)
	if err != nil {
		return nil, err
	}
	if target.Kind() == 0 {
		if !notification.IsApprovalTemplate(name) {
			return nil, fmt.Errorf("%w: template %s requires a target", notification.ErrInvalidTarget, name)
		}
		target = notification.ToRoles(notification.ApproverRoles...)
	}
	return s.Publish(ctx, tenantID, target, content)
}

// resolve 目标选择器 -> 去重后的接收人
func (s *Service) resolve(ctx context.Context, tenantID string, target notification.Target) ([]string, error) {
	var userIDs []string

	switch target.Kind() {
	case notification.TargetUser:
		if target.UserID() == "" {
			return nil, fmt.Errorf("%w: user target requires userId", notification.ErrInvalidTarget)
		}
		return []string{target.UserID()}, nil

	case notification.TargetTenant, notification.TargetRoles:
		exists, err := s.directory.TenantExists(ctx, tenantID)
		if err != nil {
			return nil, &notification.TargetResolutionError{TenantID: tenantID, Target: target, Err: err}
		}
		if !exists {
			return nil, &notification.TargetResolutionError{TenantID: tenantID, Target: target, Err: notification.ErrUnknownTenant}
		}

		if target.Kind() == notification.TargetTenant {
			userIDs, err = s.directory.Members(ctx, tenantID)
		} else {
			userIDs, err = s.directory.Resolve(ctx, tenantID, target.Roles())
		}
		if err != nil {
			return nil, &notification.TargetResolutionError{TenantID: tenantID, Target: target, Err: err}
		}

	default:
		return nil, fmt.Errorf("%w: %s", notification.ErrInvalidTarget, target.String())
	}

	return dedupe(userIDs), nil
}

// dedupe 去重并保持顺序
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// push 推送到接收人的在线连接，任何失败都不影响发布结果
func (s *Service) push(ctx context.Context, items []*notification.Notification) {
	logger := log.FromContext(ctx, s.logger)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while pushing notifications", "panic", r)
		}
	}()

	for _, n := range items {
		delivered, err := s.pusher.PushToUser(ctx, n.UserID, n)
		if err != nil {
			logger.Warn("live push failed",
				"notification_id", n.ID,
				"user_id", n.UserID,
				"error", err,
			)
			continue
		}
		if delivered == 0 {
			logger.Debug("recipient offline, notification stored only",
				"notification_id", n.ID,
				"user_id", n.UserID,
			)
		}
	}
}

// List 分页查询当前用户的通知
func (s *Service) List(ctx context.Context, tenantID, userID string, q ListQuery) (*ListResult, error) {
	filter := notification.Filter{
		Category:   q.Category,
		Type:       notification.Type(q.Type),
		Priority:   notification.Priority(q.Priority),
		UnreadOnly: !q.IncludeRead,
	}
	page, err := s.domainRepo.List(ctx, tenantID, userID, filter, notification.Pagination{Limit: q.Limit, Offset: q.Offset}, s.now())
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Notifications: ToDTOs(page.Items),
		Total:         page.Total,
		Limit:         page.Limit,
		Offset:        page.Offset,
		HasMore:       page.HasMore,
	}, nil
}

// UnreadCount 未读数量
func (s *Service) UnreadCount(ctx context.Context, tenantID, userID string) (int, error) {
	return s.domainRepo.CountUnread(ctx, tenantID, userID, s.now())
}

// MarkRead 标记单条已读，已读时幂等
func (s *Service) MarkRead(ctx context.Context, id, tenantID, userID string) error {
	return s.domainRepo.MarkRead(ctx, id, tenantID, userID, s.now())
}

// MarkAllRead 标记全部已读，返回影响条数
func (s *Service) MarkAllRead(ctx context.Context, tenantID, userID string) (int, error) {
	count, err := s.domainRepo.MarkAllRead(ctx, tenantID, userID, s.now())
	if err != nil {
		return 0, err
	}
	log.FromContext(ctx, s.logger).Debug("marked all notifications read",
		"tenant_id", tenantID,
		"user_id", userID,
		"count", count,
	)
	return count, nil
}

// Delete 删除通知
func (s *Service) Delete(ctx context.Context, id, tenantID, userID string) error {
	return s.domainRepo.Delete(ctx, id, tenantID, userID)
}

// CleanupExpired 删除已过期的通知，tenantID 为空表示全部租户
func (s *Service) CleanupExpired(ctx context.Context, tenantID string) (int, error) {
	count, err := s.domainRepo.DeleteExpired(ctx, tenantID, s.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("expired notifications cleaned up",
			"tenant_id", tenantID,
			"count", count,
		)
	}
	return count, nil
}
