package realtime

import (
	"errors"
	"time"
)

// ErrSendBufferFull 连接发送缓冲区已满，事件被丢弃
var ErrSendBufferFull = errors.New("connection send buffer full")

// ErrConnectionClosed 连接已关闭
var ErrConnectionClosed = errors.New("connection closed")

// Sender 连接的发送端，由传输层实现
// Send 只负责入队，不得阻塞调用方
type Sender interface {
	Send(event *Event) error
	Close() error
}

// Connection 一个已通过认证的实时连接（仅存在于内存）
type Connection struct {
	ID            string
	UserID        string
	TenantID      string
	EstablishedAt time.Time
	// Channels 认证成功时自动加入的频道，之后的加入/退出由注册表维护
	Channels []string
	Sender   Sender
}

// NewConnection 创建连接并绑定个人频道和租户频道
func NewConnection(id string, claims *Claims, sender Sender, now time.Time) *Connection {
	return &Connection{
		ID:            id,
		UserID:        claims.UserID,
		TenantID:      claims.TenantID,
		EstablishedAt: now,
		Channels:      []string{UserChannel(claims.UserID), TenantChannel(claims.TenantID)},
		Sender:        sender,
	}
}

// Send 推送事件，Sender 为空时视为已关闭
func (c *Connection) Send(event *Event) error {
	if c.Sender == nil {
		return ErrConnectionClosed
	}
	return c.Sender.Send(event)
}

// Info 连接摘要，用于统计接口
type Info struct {
	ConnectionID  string    `json:"connectionId"`
	UserID        string    `json:"userId"`
	TenantID      string    `json:"tenantId"`
	EstablishedAt time.Time `json:"establishedAt"`
	Channels      []string  `json:"channels"`
}
