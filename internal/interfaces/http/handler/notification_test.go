package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainRealtime "github.com/timepulse/backend/internal/domain/realtime"
	"github.com/timepulse/backend/internal/interfaces/http/response"
)

func publishBody(target map[string]any, title string) map[string]any {
	return map[string]any{
		"target":   target,
		"title":    title,
		"message":  "Timesheet waiting for approval",
		"category": "approval",
		"priority": "high",
	}
}

func listItems(t *testing.T, data map[string]any) []any {
	t.Helper()
	items, ok := data["notifications"].([]any)
	require.True(t, ok)
	return items
}

// TestNotificationHandler_PublishToRoles 角色目标只投递给持有角色的成员
func TestNotificationHandler_PublishToRoles(t *testing.T) {
	env := newTestEnv(t)
	aliceLive := env.connect(t, "alice", "T1")

	w := env.do(t, http.MethodPost, "/api/v1/notifications",
		publishBody(map[string]any{"kind": "roles", "roles": []string{"admin"}}, "Pending"), "carol", "T1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(1), dataOf(t, w)["count"])

	// alice 在线收到推送
	pushed := aliceLive.ofType(domainRealtime.EventNotification)
	require.Len(t, pushed, 1)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(pushed[0].Payload, &payload))
	assert.Equal(t, "Pending", payload["title"])
	assert.Equal(t, "T1", payload["tenantId"])

	w = env.do(t, http.MethodGet, "/api/v1/notifications", nil, "alice", "T1")
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	items := listItems(t, data)
	require.Len(t, items, 1)
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, false, data["hasMore"])

	w = env.do(t, http.MethodGet, "/api/v1/notifications", nil, "bob", "T1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, listItems(t, dataOf(t, w)))
}

// TestNotificationHandler_OfflineRecipient 离线用户上线后可以查询到通知
func TestNotificationHandler_OfflineRecipient(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/notifications",
		publishBody(map[string]any{"kind": "user", "userId": "bob"}, "Hello"), "alice", "T1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/notifications/unread-count", nil, "bob", "T1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), dataOf(t, w)["unreadCount"])
}

func TestNotificationHandler_ReadState(t *testing.T) {
	env := newTestEnv(t)

	for _, title := range []string{"first", "second", "third"} {
		w := env.do(t, http.MethodPost, "/api/v1/notifications",
			publishBody(map[string]any{"kind": "user", "userId": "bob"}, title), "alice", "T1")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := env.do(t, http.MethodGet, "/api/v1/notifications?limit=2", nil, "bob", "T1")
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	items := listItems(t, data)
	require.Len(t, items, 2)
	assert.Equal(t, float64(3), data["total"])
	assert.Equal(t, true, data["hasMore"])

	id := items[0].(map[string]any)["id"].(string)

	// 其他用户无法操作
	w = env.do(t, http.MethodPatch, "/api/v1/notifications/"+id+"/read", nil, "alice", "T1")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, float64(response.CodeNotificationNotFound), decodeBody(t, w)["code"])

	// 其他租户无法操作
	w = env.do(t, http.MethodPatch, "/api/v1/notifications/"+id+"/read", nil, "bob", "T2")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPatch, "/api/v1/notifications/"+id+"/read", nil, "bob", "T1")
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPatch, "/api/v1/notifications/"+id+"/read", nil, "bob", "T1")
	require.Equal(t, http.StatusOK, w.Code, "重复标记已读应幂等")

	w = env.do(t, http.MethodGet, "/api/v1/notifications?includeRead=false", nil, "bob", "T1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, listItems(t, dataOf(t, w)), 2)

	w = env.do(t, http.MethodPatch, "/api/v1/notifications/mark-all-read", nil, "bob", "T1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), dataOf(t, w)["updated"])

	w = env.do(t, http.MethodGet, "/api/v1/notifications/unread-count", nil, "bob", "T1")
	assert.Equal(t, float64(0), dataOf(t, w)["unreadCount"])

	w = env.do(t, http.MethodDelete, "/api/v1/notifications/"+id, nil, "alice", "T1")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodDelete, "/api/v1/notifications/"+id, nil, "bob", "T1")
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, "/api/v1/notifications/"+id, nil, "bob", "T1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandler_Template(t *testing.T) {
	env := newTestEnv(t)

	// 审批模板未指定目标时发给审批角色：alice(admin) 和 carol(manager)
	w := env.do(t, http.MethodPost, "/api/v1/notifications", map[string]any{
		"template": "approval.timesheet",
		"vars":     map[string]any{"employeeName": "Bob", "weekStartDate": "2026-10-05"},
	}, "bob", "T1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(2), dataOf(t, w)["count"])

	w = env.do(t, http.MethodPost, "/api/v1/notifications", map[string]any{
		"template": "payroll.run",
		"target":   map[string]any{"kind": "user", "userId": "bob"},
	}, "alice", "T1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, float64(response.CodeUnknownTemplate), decodeBody(t, w)["code"])
}

func TestNotificationHandler_CreateErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		body     map[string]any
		tenantID string
		status   int
		code     int
	}{
		{
			name:     "missing target",
			body:     map[string]any{"title": "t", "message": "m"},
			tenantID: "T1",
			status:   http.StatusBadRequest,
			code:     response.CodeInvalidTarget,
		},
		{
			name:     "invalid content",
			body:     map[string]any{"target": map[string]any{"kind": "user", "userId": "bob"}, "title": "t"},
			tenantID: "T1",
			status:   http.StatusBadRequest,
			code:     response.CodeInvalidContent,
		},
		{
			name:     "bad target kind",
			body:     publishBody(map[string]any{"kind": "everyone"}, "t"),
			tenantID: "T1",
			status:   http.StatusBadRequest,
			code:     response.CodeBadParam,
		},
		{
			name:     "unknown tenant",
			body:     publishBody(map[string]any{"kind": "tenant"}, "t"),
			tenantID: "T9",
			status:   http.StatusUnprocessableEntity,
			code:     response.CodeTargetResolution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/notifications", tt.body, "alice", tt.tenantID)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, float64(tt.code), decodeBody(t, w)["code"])
		})
	}
}

func TestNotificationHandler_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/notifications", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// mock token 缺少身份头
	w = env.do(t, http.MethodGet, "/api/v1/notifications", nil, "alice", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotificationHandler_InvalidQuery(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/notifications?limit=1000", nil, "alice", "T1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/notifications?priority=urgent", nil, "alice", "T1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
