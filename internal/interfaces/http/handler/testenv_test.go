package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/timepulse/backend/internal/application/notification"
	"github.com/timepulse/backend/internal/application/realtime"
	domainNotification "github.com/timepulse/backend/internal/domain/notification"
	domainRealtime "github.com/timepulse/backend/internal/domain/realtime"
	"github.com/timepulse/backend/internal/infrastructure/auth"
	"github.com/timepulse/backend/internal/infrastructure/config"
	infraNotification "github.com/timepulse/backend/internal/infrastructure/notification"
	"github.com/timepulse/backend/internal/infrastructure/storage"
	"github.com/timepulse/backend/internal/infrastructure/websocket"
	"github.com/timepulse/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router        *gin.Engine
	notifications *notification.Service
	realtime      *realtime.Service
	registry      *websocket.Registry
}

// newTestEnv 使用临时 sqlite 和进程内注册表组装完整依赖
// 租户 T1: alice(admin) bob(employee) carol(manager)；租户 T2: dave(admin)
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	members := storage.NewMemberRepository(db)
	require.NoError(t, members.AddTenant(ctx, "T1", "Acme"))
	require.NoError(t, members.AddTenant(ctx, "T2", "Globex"))
	require.NoError(t, members.AddMember(ctx, "T1", "alice", "admin"))
	require.NoError(t, members.AddMember(ctx, "T1", "bob", "employee"))
	require.NoError(t, members.AddMember(ctx, "T1", "carol", "manager"))
	require.NoError(t, members.AddMember(ctx, "T2", "dave", "admin"))

	registry := websocket.NewRegistry()
	notifications := notification.NewService(
		storage.NewNotificationRepository(db),
		domainNotification.NewService(),
		members,
		infraNotification.NewRegistryPusher(registry),
	)

	authCfg := &config.AuthConfig{JWTSecret: "test-secret", Issuer: "timepulse", AllowMock: true}
	authenticator := auth.NewAuthenticator(authCfg, auth.NewJWTAuthenticator(authCfg))
	realtimeSvc := realtime.NewService(authenticator, registry)

	notificationHandler := NewNotificationHandler(notifications)
	realtimeHandler := NewRealtimeHandler(realtimeSvc)
	healthHandler := NewHealthHandler(db, registry)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(authenticator))
	{
		api.GET("/notifications", notificationHandler.List)
		api.POST("/notifications", notificationHandler.Create)
		api.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		api.PATCH("/notifications/mark-all-read", notificationHandler.MarkAllRead)
		api.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		api.DELETE("/notifications/:id", notificationHandler.Delete)
		api.GET("/realtime/stats", realtimeHandler.Stats)
		api.GET("/realtime/connections", realtimeHandler.Connections)
		api.POST("/realtime/system-messages", realtimeHandler.SystemMessage)
	}
	router.GET("/health", healthHandler.Check)

	return &testEnv{
		router:        router,
		notifications: notifications,
		realtime:      realtimeSvc,
		registry:      registry,
	}
}

// do 以 mock token 身份发送请求
func (e *testEnv) do(t *testing.T, method, path string, body any, userID, tenantID string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+domainRealtime.MockToken)
		req.Header.Set(middleware.HeaderUserID, userID)
		req.Header.Set(middleware.HeaderTenantID, tenantID)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// connect 以 alice 等身份模拟一个在线连接
func (e *testEnv) connect(t *testing.T, userID, tenantID string) *recordingSender {
	t.Helper()
	sender := &recordingSender{}
	_, err := e.realtime.Admit(context.Background(),
		domainRealtime.MockAuth{UserID: userID, TenantID: tenantID}, nil, sender)
	require.NoError(t, err)
	return sender
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	data, ok := decodeBody(t, w)["data"].(map[string]any)
	require.True(t, ok, "响应应包含 data 字段: %s", w.Body.String())
	return data
}

type recordingSender struct {
	mu     sync.Mutex
	events []*domainRealtime.Event
}

func (s *recordingSender) Send(ev *domainRealtime.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSender) Close() error { return nil }

func (s *recordingSender) ofType(typ domainRealtime.EventType) []*domainRealtime.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domainRealtime.Event
	for _, ev := range s.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

