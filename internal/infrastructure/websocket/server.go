package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/timepulse/backend/internal/domain/realtime"
	"github.com/timepulse/backend/internal/infrastructure/config"
	"github.com/timepulse/backend/internal/infrastructure/log"
)

// writeWait 单次写入超时
const writeWait = 10 * time.Second

// Server WebSocket 服务端
type Server struct {
	cfg      *config.WebSocketConfig
	session  realtime.Session
	upgrader websocket.Upgrader
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewServer 创建 WebSocket 服务端
func NewServer(cfg *config.WebSocketConfig, serverCfg *config.ServerConfig, session realtime.Session) *Server {
	s := &Server{
		cfg:     cfg,
		session: session,
		logger:  log.NewModuleLogger("realtime", "websocket_server"),
		now:     time.Now,
		clients: make(map[*client]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     originChecker(serverCfg.AllowedOrigins),
	}
	return s
}

// originChecker 校验 Origin；无 Origin 的非浏览器客户端放行
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// HandleConnection 处理新的 WebSocket 连接
func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade connection",
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		return
	}

	c := newClient(conn, s.cfg.SendBufferSize)
	s.track(c)

	go s.serve(c, r.Header.Get("Authorization"))
}

// serve 认证后进入读写循环，返回时连接已注销
func (s *Server) serve(c *client, headerToken string) {
	defer s.untrack(c)

	rc, ok := s.handshake(c, headerToken)
	if !ok {
		_ = c.Close()
		return
	}

	logger := s.logger.With("connection_id", rc.ID, "user_id", rc.UserID, "tenant_id", rc.TenantID)
	logger.Info("connection established")

	go s.writePump(c, logger)
	s.readPump(c, rc, logger)

	s.session.Disconnect(rc.ID)
	_ = c.Close()
	logger.Info("connection closed")
}

// handshake 第一条消息必须是 auth 事件，且在 AuthTimeout 内到达
func (s *Server) handshake(c *client, headerToken string) (*realtime.Connection, bool) {
	_ = c.conn.SetReadDeadline(s.now().Add(s.cfg.AuthTimeout))

	_, message, err := c.conn.ReadMessage()
	if err != nil {
		s.logger.Warn("failed to read auth message", "error", err)
		return nil, false
	}

	var event realtime.Event
	if err := json.Unmarshal(message, &event); err != nil {
		s.writeAuthResult(c, realtime.AuthResultPayload{Error: "invalid message format"})
		return nil, false
	}
	if event.Type != realtime.EventAuth {
		s.writeAuthResult(c, realtime.AuthResultPayload{Error: "expected auth event"})
		return nil, false
	}

	method, claimed, err := realtime.ParseAuthPayload(event.Payload, headerToken)
	if err != nil {
		s.writeAuthResult(c, realtime.AuthResultPayload{Error: err.Error()})
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.AuthTimeout)
	defer cancel()

	rc, err := s.session.Admit(ctx, method, claimed, c)
	if err != nil {
		s.logger.Warn("connection rejected", "error", err)
		msg := "authentication failed"
		if errors.Is(err, realtime.ErrAuthentication) {
			msg = err.Error()
		}
		s.writeAuthResult(c, realtime.AuthResultPayload{Error: msg})
		return nil, false
	}

	// 清除认证超时
	_ = c.conn.SetReadDeadline(time.Time{})

	// writePump 尚未启动，直接写入保证 auth_result 先于任何推送
	if !s.writeAuthResult(c, realtime.AuthResultPayload{Success: true, ConnectionID: rc.ID}) {
		s.session.Disconnect(rc.ID)
		return nil, false
	}
	return rc, true
}

// writeAuthResult 直接写出认证结果
func (s *Server) writeAuthResult(c *client, payload realtime.AuthResultPayload) bool {
	event, err := realtime.NewEvent(realtime.EventAuthResult, payload, s.now())
	if err != nil {
		return false
	}
	data, err := json.Marshal(event)
	if err != nil {
		return false
	}
	_ = c.conn.SetWriteDeadline(s.now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data) == nil
}

// readPump 读取上行事件
func (s *Server) readPump(c *client, rc *realtime.Connection, logger *slog.Logger) {
	if s.cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(s.cfg.MaxMessageSize)
	}

	// 超过 HeartbeatTimeout 未收到任何消息则断开
	_ = c.conn.SetReadDeadline(s.now().Add(s.cfg.HeartbeatTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(s.now().Add(s.cfg.HeartbeatTimeout))
	})

	limiter := rate.NewLimiter(rate.Limit(s.cfg.EventsPerSecond), s.cfg.EventBurst)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("connection read error", "error", err)
			}
			return
		}

		// 收到任何消息都续期读取超时
		_ = c.conn.SetReadDeadline(s.now().Add(s.cfg.HeartbeatTimeout))

		if s.cfg.EventsPerSecond > 0 && !limiter.Allow() {
			s.sendError(c, "rate limit exceeded")
			continue
		}

		var event realtime.Event
		if err := json.Unmarshal(message, &event); err != nil {
			logger.Warn("failed to parse message", "error", err)
			s.sendError(c, "invalid message format")
			continue
		}

		s.dispatch(c, rc, &event, logger)
	}
}

// dispatch 处理单个上行事件
func (s *Server) dispatch(c *client, rc *realtime.Connection, event *realtime.Event, logger *slog.Logger) {
	switch event.Type {
	case realtime.EventPing:
		s.reply(c, realtime.EventPong, nil)

	case realtime.EventJoinRoom, realtime.EventLeaveRoom:
		room, err := parseRoom(event.Payload)
		if err != nil {
			s.sendError(c, "invalid room payload")
			return
		}
		var changed bool
		action := "join"
		if event.Type == realtime.EventJoinRoom {
			changed, err = s.session.JoinChannel(rc.ID, room)
		} else {
			action = "leave"
			changed, err = s.session.LeaveChannel(rc.ID, room)
		}
		result := realtime.RoomResultPayload{Room: room, Action: action, Changed: changed}
		if err != nil {
			result.Error = err.Error()
		}
		s.reply(c, realtime.EventRoomResult, result)

	case realtime.EventNotificationAck:
		id, err := parseAck(event.Payload)
		if err != nil {
			s.sendError(c, "invalid ack payload")
			return
		}
		s.session.Acknowledge(rc.ID, id)

	case realtime.EventAuth:
		s.sendError(c, "already authenticated")

	default:
		logger.Debug("unknown event type", "type", event.Type)
		s.sendError(c, "unknown event type")
	}
}

// parseRoom 兼容 {"room": "x"} 和 "x" 两种载荷
func parseRoom(raw json.RawMessage) (string, error) {
	var room string
	if err := json.Unmarshal(raw, &room); err == nil {
		return room, nil
	}
	var p realtime.RoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", err
	}
	return p.Room, nil
}

// parseAck 兼容 {"notificationId": "x"} 和 "x" 两种载荷
func parseAck(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var p realtime.AckPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", err
	}
	return p.NotificationID, nil
}

func (s *Server) reply(c *client, typ realtime.EventType, payload any) {
	event, err := realtime.NewEvent(typ, payload, s.now())
	if err != nil {
		return
	}
	_ = c.Send(event)
}

func (s *Server) sendError(c *client, msg string) {
	s.reply(c, realtime.EventError, realtime.ErrorPayload{Message: msg})
}

// writePump 写出下行事件并定时发送 Ping
func (s *Server) writePump(c *client, logger *slog.Logger) {
	interval := s.cfg.HeartbeatInterval
	if interval <= 0 {
		interval = 25 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(s.now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("failed to write message", "error", err)
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(s.now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}

func (s *Server) track(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

// Close 关闭所有连接，读循环退出后各自注销
func (s *Server) Close() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		_ = c.Close()
	}
	s.logger.Info("websocket server closed", "connections", len(clients))
}
