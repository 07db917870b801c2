package realtime

import "context"

// Session 连接生命周期与上行事件的处理方
// 传输层（WebSocket 服务端）只负责收发，准入与频道规则由实现方决定
type Session interface {
	// Admit 校验凭证并注册连接；claimed 非空时必须与凭证身份一致
	Admit(ctx context.Context, method AuthMethod, claimed *Identity, sender Sender) (*Connection, error)
	// Disconnect 注销连接，可重复调用
	Disconnect(connectionID string)
	JoinChannel(connectionID, channel string) (bool, error)
	LeaveChannel(connectionID, channel string) (bool, error)
	// Acknowledge 客户端确认收到通知
	Acknowledge(connectionID, notificationID string)
}
