package realtime

import (
	"encoding/json"
	"time"
)

// EventType 实时事件类型
type EventType string

const (
	// 客户端 -> 服务端
	EventAuth            EventType = "auth"
	EventJoinRoom        EventType = "join-room"
	EventLeaveRoom       EventType = "leave-room"
	EventNotificationAck EventType = "notification-ack"
	EventPing            EventType = "ping"

	// 服务端 -> 客户端
	EventAuthResult    EventType = "auth_result"
	EventNotification  EventType = "notification"
	EventSystemMessage EventType = "system-message"
	EventRoomResult    EventType = "room_result"
	EventPong          EventType = "pong"
	EventError         EventType = "error"
)

// Event 线上消息信封
type Event struct {
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// NewEvent 编码载荷并创建事件
func NewEvent(typ EventType, payload any, now time.Time) (*Event, error) {
	ev := &Event{Type: typ, Timestamp: now.UnixMilli()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		ev.Payload = data
	}
	return ev, nil
}

// AuthResultPayload 认证结果
type AuthResultPayload struct {
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	ConnectionID string `json:"connectionId,omitempty"`
}

// RoomPayload join-room / leave-room 载荷
type RoomPayload struct {
	Room string `json:"room"`
}

// RoomResultPayload 加入/退出频道结果
type RoomResultPayload struct {
	Room    string `json:"room"`
	Action  string `json:"action"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// AckPayload notification-ack 载荷
type AckPayload struct {
	NotificationID string `json:"notificationId"`
}

// SystemMessagePayload 系统消息（不落库）
type SystemMessagePayload struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	SystemType string `json:"systemType"`
	Timestamp  string `json:"timestamp"`
}

// ErrorPayload 错误事件载荷
type ErrorPayload struct {
	Message string `json:"message"`
}
