package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/timepulse/backend/internal/domain/realtime"
)

// client 单个 WebSocket 连接的发送端
type client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

var _ realtime.Sender = (*client)(nil)

func newClient(conn *websocket.Conn, bufferSize int) *client {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &client{
		conn: conn,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

// Send 事件入队，缓冲区满时丢弃，不阻塞
func (c *client) Send(event *realtime.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return realtime.ErrConnectionClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return realtime.ErrConnectionClosed
	default:
		return realtime.ErrSendBufferFull
	}
}

// Close 关闭连接，可重复调用
func (c *client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}
