package realtime

// Registry 连接注册表：身份与连接、频道与连接的双向索引
// 所有方法必须可并发调用
type Registry interface {
	// Register 按 Connection.ID 幂等注册，并加入 Connection.Channels 中的频道
	Register(conn *Connection)
	// Unregister 从所有索引移除，连接不存在时为空操作；返回被移除的连接
	Unregister(connectionID string) (*Connection, bool)
	// Get 按 ID 查找连接
	Get(connectionID string) (*Connection, bool)
	// FindByIdentity 用户的全部在线连接，空表示离线
	FindByIdentity(userID string) []*Connection
	// FindByChannel 频道内的全部连接
	FindByChannel(channel string) []*Connection
	// CountForChannel 频道内连接数
	CountForChannel(channel string) int
	// Join 加入频道，返回是否发生变化；已加入为空操作
	Join(connectionID, channel string) bool
	// Leave 退出频道，返回是否发生变化；未加入为空操作
	Leave(connectionID, channel string) bool
	// ChannelsOf 连接当前加入的频道
	ChannelsOf(connectionID string) []string
	// ConnectedUsers 频道内去重后的用户 ID
	ConnectedUsers(channel string) []string
	// Snapshot 全部连接摘要
	Snapshot() []Info
}
