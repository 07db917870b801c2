package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
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
	"github.com/timepulse/backend/internal/interfaces/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stack struct {
	server   *httptest.Server
	jwt      *auth.JWTAuthenticator
	registry *websocket.Registry
}

func newStack(t *testing.T) *stack {
	t.Helper()

	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	members := storage.NewMemberRepository(db)
	require.NoError(t, members.AddTenant(ctx, "T1", "Acme"))
	require.NoError(t, members.AddMember(ctx, "T1", "alice", "admin"))
	require.NoError(t, members.AddMember(ctx, "T1", "bob", "employee"))

	cfg := config.NewConfig()
	cfg.Auth.JWTSecret = "e2e-secret"
	cfg.WebSocket.AuthTimeout = 2 * time.Second

	registry := websocket.NewRegistry()
	jwtAuth := auth.NewJWTAuthenticator(&cfg.Auth)
	authenticator := auth.NewAuthenticator(&cfg.Auth, jwtAuth)
	notifications := notification.NewService(
		storage.NewNotificationRepository(db),
		domainNotification.NewService(),
		members,
		infraNotification.NewRegistryPusher(registry),
	)
	realtimeSvc := realtime.NewService(authenticator, registry)
	wsServer := websocket.NewServer(&cfg.WebSocket, &cfg.Server, realtimeSvc)
	t.Cleanup(wsServer.Close)

	srv := NewServer(
		&cfg.Server,
		authenticator,
		handler.NewNotificationHandler(notifications),
		handler.NewRealtimeHandler(realtimeSvc),
		handler.NewHealthHandler(db, registry),
		wsServer,
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &stack{server: ts, jwt: jwtAuth, registry: registry}
}

func (s *stack) token(t *testing.T, userID, tenantID string) string {
	t.Helper()
	token, err := s.jwt.GenerateToken(userID, tenantID, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *stack) dial(t *testing.T, token string) (*gorilla.Conn, *domainRealtime.AuthResultPayload) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	payload, err := json.Marshal(domainRealtime.AuthPayload{Token: token})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(domainRealtime.Event{Type: domainRealtime.EventAuth, Payload: payload}))

	ev := readEvent(t, conn)
	require.Equal(t, domainRealtime.EventAuthResult, ev.Type)
	var result domainRealtime.AuthResultPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &result))
	return conn, &result
}

func readEvent(t *testing.T, conn *gorilla.Conn) *domainRealtime.Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev domainRealtime.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return &ev
}

func (s *stack) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// TestEndToEnd_PublishAndPush 发布后在线接收人实时收到，离线接收人稍后查询到
func TestEndToEnd_PublishAndPush(t *testing.T) {
	s := newStack(t)
	aliceToken := s.token(t, "alice", "T1")
	bobToken := s.token(t, "bob", "T1")

	conn, result := s.dial(t, aliceToken)
	require.True(t, result.Success, result.Error)

	resp := s.request(t, http.MethodPost, "/api/v1/notifications", bobToken, map[string]any{
		"target":  map[string]any{"kind": "roles", "roles": []string{"admin"}},
		"title":   "Pending",
		"message": "Bob submitted a timesheet",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	ev := readEvent(t, conn)
	require.Equal(t, domainRealtime.EventNotification, ev.Type)
	var pushed map[string]any
	require.NoError(t, json.Unmarshal(ev.Payload, &pushed))
	assert.Equal(t, "Pending", pushed["title"])
	assert.Equal(t, "alice", pushed["userId"])

	// 推送内容与存储一致
	resp = s.request(t, http.MethodGet, "/api/v1/notifications", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data notification.ListResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Data.Notifications, 1)
	assert.Equal(t, pushed["id"], body.Data.Notifications[0].ID)
}

func TestEndToEnd_HandshakeRejected(t *testing.T) {
	s := newStack(t)

	forged, err := auth.NewJWTAuthenticator(&config.AuthConfig{JWTSecret: "other", Issuer: "timepulse"}).
		GenerateToken("alice", "T1", time.Hour)
	require.NoError(t, err)

	_, result := s.dial(t, forged)
	assert.False(t, result.Success)
	assert.Equal(t, 0, s.registry.Len())
}

func TestEndToEnd_Health(t *testing.T) {
	s := newStack(t)

	resp := s.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.request(t, http.MethodGet, "/api/v1/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEndToEnd_SwaggerDoc(t *testing.T) {
	s := newStack(t)

	resp := s.request(t, http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths, "/notifications/{id}/read")
	assert.Contains(t, doc.Paths["/notifications"], "post")
	assert.Contains(t, doc.Paths, "/realtime/system-messages")
}
