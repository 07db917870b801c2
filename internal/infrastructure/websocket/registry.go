package websocket

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/timepulse/backend/internal/domain/realtime"
	"github.com/timepulse/backend/internal/infrastructure/log"
)

// Registry 进程内连接注册表
type Registry struct {
	mu sync.RWMutex
	// 连接 ID -> 连接
	conns map[string]*realtime.Connection
	// 用户 ID -> 连接 ID 集合
	byIdentity map[string]map[string]struct{}
	channels   *channelIndex
	logger     *slog.Logger
}

var _ realtime.Registry = (*Registry)(nil)

// NewRegistry 创建注册表
func NewRegistry() *Registry {
	return &Registry{
		conns:      make(map[string]*realtime.Connection),
		byIdentity: make(map[string]map[string]struct{}),
		channels:   newChannelIndex(),
		logger:     log.NewModuleLogger("realtime", "registry"),
	}
}

// Register 注册连接
func (r *Registry) Register(conn *realtime.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[conn.ID]; exists {
		return
	}
	r.conns[conn.ID] = conn

	ids, ok := r.byIdentity[conn.UserID]
	if !ok {
		ids = make(map[string]struct{})
		r.byIdentity[conn.UserID] = ids
	}
	ids[conn.ID] = struct{}{}

	for _, ch := range conn.Channels {
		r.channels.add(conn.ID, ch)
	}

	r.logger.Debug("connection registered",
		"connection_id", conn.ID,
		"user_id", conn.UserID,
		"tenant_id", conn.TenantID,
	)
}

// Unregister 注销连接
func (r *Registry) Unregister(connectionID string) (*realtime.Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[connectionID]
	if !exists {
		return nil, false
	}
	delete(r.conns, connectionID)

	if ids, ok := r.byIdentity[conn.UserID]; ok {
		delete(ids, connectionID)
		if len(ids) == 0 {
			delete(r.byIdentity, conn.UserID)
		}
	}
	r.channels.removeAll(connectionID)

	r.logger.Debug("connection unregistered",
		"connection_id", connectionID,
		"user_id", conn.UserID,
	)
	return conn, true
}

// Get 按 ID 查找连接
func (r *Registry) Get(connectionID string) (*realtime.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[connectionID]
	return conn, ok
}

// FindByIdentity 用户的全部连接
func (r *Registry) FindByIdentity(userID string) []*realtime.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byIdentity[userID]
	out := make([]*realtime.Connection, 0, len(ids))
	for id := range ids {
		out = append(out, r.conns[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindByChannel 频道内的全部连接
func (r *Registry) FindByChannel(channel string) []*realtime.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.channels.connIDs(channel)
	out := make([]*realtime.Connection, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.conns[id])
	}
	return out
}

// CountForChannel 频道内连接数
func (r *Registry) CountForChannel(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channels.count(channel)
}

// Join 加入频道，连接不存在时返回 false
func (r *Registry) Join(connectionID, channel string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connectionID]; !ok {
		return false
	}
	return r.channels.add(connectionID, channel)
}

// Leave 退出频道
func (r *Registry) Leave(connectionID, channel string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channels.remove(connectionID, channel)
}

// ChannelsOf 连接加入的频道
func (r *Registry) ChannelsOf(connectionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channels.channelsOf(connectionID)
}

// ConnectedUsers 频道内去重后的用户
func (r *Registry) ConnectedUsers(channel string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	users := make([]string, 0)
	for _, id := range r.channels.connIDs(channel) {
		userID := r.conns[id].UserID
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// Snapshot 全部连接摘要
func (r *Registry) Snapshot() []realtime.Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]realtime.Info, 0, len(r.conns))
	for id, conn := range r.conns {
		out = append(out, realtime.Info{
			ConnectionID:  id,
			UserID:        conn.UserID,
			TenantID:      conn.TenantID,
			EstablishedAt: conn.EstablishedAt,
			Channels:      r.channels.channelsOf(id),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectionID < out[j].ConnectionID })
	return out
}

// Len 连接总数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// ChannelCount 非空频道数
func (r *Registry) ChannelCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channels.channelCount()
}
