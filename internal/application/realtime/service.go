package realtime

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/timepulse/backend/internal/domain/realtime"
	"github.com/timepulse/backend/internal/infrastructure/log"
)

var (
	// ErrConnectionNotFound 连接不存在或已断开
	ErrConnectionNotFound = errors.New("connection not found")
	// ErrEmptyMessage 系统消息内容为空
	ErrEmptyMessage = errors.New("message is required")
	// ErrMissingTenant 未指定租户
	ErrMissingTenant = errors.New("tenant id is required")
)

// DefaultSystemType 系统消息默认类型
const DefaultSystemType = "info"

// Service 实时连接的应用服务：认证准入、频道管理、系统消息
type Service struct {
	authenticator realtime.Authenticator
	registry      realtime.Registry
	logger        *slog.Logger
	now           func() time.Time
	newID         func() string
}

var _ realtime.Session = (*Service)(nil)

// NewService 创建实时服务
func NewService(authenticator realtime.Authenticator, registry realtime.Registry) *Service {
	return &Service{
		authenticator: authenticator,
		registry:      registry,
		logger:        log.NewModuleLogger("realtime", "service"),
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// Admit 校验凭证并注册连接
// 客户端声明的身份与凭证不一致时拒绝；失败时不注册任何状态
func (s *Service) Admit(ctx context.Context, method realtime.AuthMethod, claimed *realtime.Identity, sender realtime.Sender) (*realtime.Connection, error) {
	claims, err := s.authenticator.Authenticate(ctx, method)
	if err != nil {
		return nil, err
	}
	if claimed != nil {
		if claimed.UserID != "" && claimed.UserID != claims.UserID {
			return nil, realtime.NewAuthenticationError("claimed identity does not match credential")
		}
		if claimed.TenantID != "" && claimed.TenantID != claims.TenantID {
			return nil, realtime.NewAuthenticationError("claimed tenant does not match credential")
		}
	}

	conn := realtime.NewConnection(s.newID(), claims, sender, s.now())
	s.registry.Register(conn)

	ctx = log.WithConnectionID(log.WithTenantID(log.WithUserID(ctx, conn.UserID), conn.TenantID), conn.ID)
	log.FromContext(ctx, s.logger).Info("connection admitted", "channels", conn.Channels)
	return conn, nil
}

// Disconnect 注销连接，重复调用为空操作
func (s *Service) Disconnect(connectionID string) {
	conn, ok := s.registry.Unregister(connectionID)
	if !ok {
		return
	}
	s.logger.Debug("connection unregistered",
		"connection_id", connectionID,
		"user_id", conn.UserID,
		"tenant_id", conn.TenantID,
	)
}

// JoinChannel 加入频道，返回是否发生变化
func (s *Service) JoinChannel(connectionID, channel string) (bool, error) {
	conn, ok := s.registry.Get(connectionID)
	if !ok {
		return false, ErrConnectionNotFound
	}
	channel = strings.TrimSpace(channel)
	if err := realtime.ValidateJoin(conn, channel); err != nil {
		s.logger.Warn("join rejected",
			"connection_id", connectionID,
			"channel", channel,
			"error", err,
		)
		return false, err
	}
	return s.registry.Join(connectionID, channel), nil
}

// LeaveChannel 退出频道，返回是否发生变化
func (s *Service) LeaveChannel(connectionID, channel string) (bool, error) {
	if _, ok := s.registry.Get(connectionID); !ok {
		return false, ErrConnectionNotFound
	}
	channel = strings.TrimSpace(channel)
	if err := realtime.ValidateLeave(channel); err != nil {
		return false, err
	}
	return s.registry.Leave(connectionID, channel), nil
}

// Acknowledge 记录客户端回执，不修改已读状态
func (s *Service) Acknowledge(connectionID, notificationID string) {
	conn, ok := s.registry.Get(connectionID)
	if !ok {
		return
	}
	s.logger.Debug("notification acknowledged",
		"connection_id", connectionID,
		"user_id", conn.UserID,
		"notification_id", notificationID,
	)
}

// BroadcastSystemMessage 向租户频道广播系统消息（不落库），返回成功入队的连接数
func (s *Service) BroadcastSystemMessage(ctx context.Context, tenantID, message, systemType string) (int, error) {
	if strings.TrimSpace(tenantID) == "" {
		return 0, ErrMissingTenant
	}
	return s.sendSystemMessage(ctx, s.registry.FindByChannel(realtime.TenantChannel(tenantID)), message, systemType)
}

// SendSystemMessage 向单个用户的全部连接发送系统消息（不落库）
func (s *Service) SendSystemMessage(ctx context.Context, userID, message, systemType string) (int, error) {
	return s.sendSystemMessage(ctx, s.registry.FindByIdentity(userID), message, systemType)
}

func (s *Service) sendSystemMessage(ctx context.Context, conns []*realtime.Connection, message, systemType string) (int, error) {
	if strings.TrimSpace(message) == "" {
		return 0, ErrEmptyMessage
	}
	if systemType == "" {
		systemType = DefaultSystemType
	}

	now := s.now()
	event, err := realtime.NewEvent(realtime.EventSystemMessage, realtime.SystemMessagePayload{
		Type:       "system",
		Message:    message,
		SystemType: systemType,
		Timestamp:  now.UTC().Format(time.RFC3339),
	}, now)
	if err != nil {
		return 0, err
	}

	logger := log.FromContext(ctx, s.logger)
	delivered := 0
	for _, conn := range conns {
		if err := conn.Send(event); err != nil {
			logger.Warn("failed to enqueue system message",
				"connection_id", conn.ID,
				"error", err,
			)
			continue
		}
		delivered++
	}
	logger.Info("system message sent",
		"system_type", systemType,
		"connections", len(conns),
		"delivered", delivered,
	)
	return delivered, nil
}

// Stats 租户在线统计
type Stats struct {
	TenantID        string   `json:"tenantId"`
	ConnectionCount int      `json:"connectionCount"`
	ConnectedUsers  []string `json:"connectedUsers"`
	UserCount       int      `json:"userCount"`
}

// TenantStats 返回租户频道的在线统计
func (s *Service) TenantStats(tenantID string) *Stats {
	channel := realtime.TenantChannel(tenantID)
	users := s.registry.ConnectedUsers(channel)
	if users == nil {
		users = []string{}
	}
	return &Stats{
		TenantID:        tenantID,
		ConnectionCount: s.registry.CountForChannel(channel),
		ConnectedUsers:  users,
		UserCount:       len(users),
	}
}

// IsUserConnected 用户是否至少有一个在线连接
func (s *Service) IsUserConnected(userID string) bool {
	return len(s.registry.FindByIdentity(userID)) > 0
}

// Connections 租户下的连接摘要
func (s *Service) Connections(tenantID string) []realtime.Info {
	all := s.registry.Snapshot()
	out := make([]realtime.Info, 0, len(all))
	for _, info := range all {
		if info.TenantID == tenantID {
			out = append(out, info)
		}
	}
	return out
}
