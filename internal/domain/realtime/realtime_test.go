package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnection_AutoJoinsOwnChannels(t *testing.T) {
	conn := NewConnection("c1", &Claims{UserID: "alice", TenantID: "T1"}, nil, time.Now())

	assert.Equal(t, []string{"user:alice", "tenant:T1"}, conn.Channels)
	assert.ErrorIs(t, conn.Send(&Event{Type: EventPong}), ErrConnectionClosed)
}

func TestValidateJoin(t *testing.T) {
	conn := &Connection{ID: "c1", UserID: "alice", TenantID: "T1"}

	assert.NoError(t, ValidateJoin(conn, "timesheet-approvals"))
	assert.NoError(t, ValidateJoin(conn, "user:alice"))
	assert.NoError(t, ValidateJoin(conn, "tenant:T1"))

	assert.ErrorIs(t, ValidateJoin(conn, "tenant:T2"), ErrChannelForbidden)
	assert.ErrorIs(t, ValidateJoin(conn, "user:bob"), ErrChannelForbidden)
	assert.ErrorIs(t, ValidateJoin(conn, "  "), ErrInvalidChannel)
	assert.ErrorIs(t, ValidateJoin(conn, string(make([]byte, MaxChannelNameLength+1))), ErrInvalidChannel)
}

func TestValidateLeave(t *testing.T) {
	assert.NoError(t, ValidateLeave("timesheet-approvals"))
	assert.ErrorIs(t, ValidateLeave("tenant:T1"), ErrChannelForbidden)
	assert.ErrorIs(t, ValidateLeave(""), ErrInvalidChannel)
}

func TestParseAuthPayload(t *testing.T) {
	t.Run("bearer token", func(t *testing.T) {
		method, claimed, err := ParseAuthPayload(json.RawMessage(`{"token":"abc.def.ghi"}`), "")
		require.NoError(t, err)
		assert.Equal(t, BearerAuth{Token: "abc.def.ghi"}, method)
		assert.Nil(t, claimed)
	})

	t.Run("header fallback", func(t *testing.T) {
		method, _, err := ParseAuthPayload(nil, "Bearer xyz")
		require.NoError(t, err)
		assert.Equal(t, BearerAuth{Token: "xyz"}, method)
	})

	t.Run("mock token with user info", func(t *testing.T) {
		raw := json.RawMessage(`{"token":"mock-jwt-token","userInfo":{"id":"alice","tenantId":"T1"}}`)
		method, claimed, err := ParseAuthPayload(raw, "")
		require.NoError(t, err)
		assert.Equal(t, MockAuth{UserID: "alice", TenantID: "T1"}, method)
		require.NotNil(t, claimed)
		assert.Equal(t, "alice", claimed.UserID)
	})

	t.Run("mock token without user info", func(t *testing.T) {
		_, _, err := ParseAuthPayload(json.RawMessage(`{"token":"mock-jwt-token"}`), "")
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("missing token", func(t *testing.T) {
		_, _, err := ParseAuthPayload(json.RawMessage(`{}`), "")
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, _, err := ParseAuthPayload(json.RawMessage(`"nope`), "")
		assert.ErrorIs(t, err, ErrAuthentication)
	})
}

func TestNewEvent(t *testing.T) {
	now := time.UnixMilli(1760000000000)
	ev, err := NewEvent(EventAuthResult, AuthResultPayload{Success: true, ConnectionID: "c1"}, now)
	require.NoError(t, err)

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"auth_result","payload":{"success":true,"connectionId":"c1"},"timestamp":1760000000000}`, string(data))
}
