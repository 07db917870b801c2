package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/timepulse/backend/internal/application/notification/mocks"
	domainNotification "github.com/timepulse/backend/internal/domain/notification"
)

var testContent = domainNotification.Content{
	Title:    "Pending",
	Message:  "Timesheet waiting for approval",
	Category: "approval",
}

func newTestService(t *testing.T) (*Service, *mocks.MockRepository, *mocks.MockDirectory, *mocks.MockPusher) {
	repo := mocks.NewMockRepository(t)
	dir := mocks.NewMockDirectory(t)
	pusher := mocks.NewMockPusher(t)
	svc := NewService(repo, domainNotification.NewService(), dir, pusher)
	return svc, repo, dir, pusher
}

func batchOf(n int) interface{} {
	return mock.MatchedBy(func(items []*domainNotification.Notification) bool {
		return len(items) == n
	})
}

func TestService_Publish_ToUserOffline(t *testing.T) {
	svc, repo, _, pusher := newTestService(t)
	ctx := context.Background()

	repo.On("CreateBatch", ctx, batchOf(1)).Return(nil).Once()
	pusher.On("PushToUser", ctx, "alice", mock.Anything).Return(0, nil).Once()

	items, err := svc.Publish(ctx, "T1", domainNotification.ToUser("alice"), testContent)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "T1", items[0].TenantID)
	assert.Equal(t, "alice", items[0].UserID)
	assert.Equal(t, domainNotification.PriorityMedium, items[0].Priority)
	assert.Nil(t, items[0].ReadAt)
}

func TestService_Publish_ToRoles(t *testing.T) {
	svc, repo, dir, pusher := newTestService(t)
	ctx := context.Background()

	dir.On("TenantExists", ctx, "T1").Return(true, nil)
	dir.On("Resolve", ctx, "T1", []string{"admin"}).Return([]string{"a1", "a2", "a3"}, nil)
	repo.On("CreateBatch", ctx, batchOf(3)).Return(nil).Once()
	// 只有 a2 在线
	pusher.On("PushToUser", ctx, "a1", mock.Anything).Return(0, nil)
	pusher.On("PushToUser", ctx, "a2", mock.Anything).Return(2, nil)
	pusher.On("PushToUser", ctx, "a3", mock.Anything).Return(0, nil)

	items, err := svc.Publish(ctx, "T1", domainNotification.ToRoles("admin"), testContent)
	require.NoError(t, err)
	require.Len(t, items, 3)

	ids := map[string]bool{}
	for _, n := range items {
		ids[n.ID] = true
	}
	assert.Len(t, ids, 3, "每个接收人一条独立记录")
}

func TestService_Publish_ToTenantDeduplicates(t *testing.T) {
	svc, repo, dir, pusher := newTestService(t)
	ctx := context.Background()

	dir.On("TenantExists", ctx, "T1").Return(true, nil)
	dir.On("Members", ctx, "T1").Return([]string{"alice", "bob", "alice", ""}, nil)
	repo.On("CreateBatch", ctx, batchOf(2)).Return(nil).Once()
	pusher.On("PushToUser", ctx, mock.Anything, mock.Anything).Return(1, nil).Twice()

	items, err := svc.Publish(ctx, "T1", domainNotification.ToTenant(), testContent)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestService_Publish_UnknownTenant(t *testing.T) {
	svc, _, dir, _ := newTestService(t)
	ctx := context.Background()

	dir.On("TenantExists", ctx, "T9").Return(false, nil)

	_, err := svc.Publish(ctx, "T9", domainNotification.ToRoles("admin"), testContent)
	assert.ErrorIs(t, err, domainNotification.ErrTargetResolution)
	assert.ErrorIs(t, err, domainNotification.ErrUnknownTenant)
	// 未设置 CreateBatch 期望：解析失败时不会写入
}

func TestService_Publish_DirectoryError(t *testing.T) {
	svc, _, dir, _ := newTestService(t)
	ctx := context.Background()

	dir.On("TenantExists", ctx, "T1").Return(true, nil)
	dir.On("Members", ctx, "T1").Return(nil, errors.New("directory down"))

	_, err := svc.Publish(ctx, "T1", domainNotification.ToTenant(), testContent)
	assert.ErrorIs(t, err, domainNotification.ErrTargetResolution)
}

func TestService_Publish_EmptyRecipients(t *testing.T) {
	svc, _, dir, _ := newTestService(t)
	ctx := context.Background()

	dir.On("TenantExists", ctx, "T1").Return(true, nil)
	dir.On("Resolve", ctx, "T1", []string{"auditor"}).Return([]string{}, nil)

	items, err := svc.Publish(ctx, "T1", domainNotification.ToRoles("auditor"), testContent)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestService_Publish_PersistenceFailure(t *testing.T) {
	svc, repo, dir, _ := newTestService(t)
	ctx := context.Background()

	dir.On("TenantExists", ctx, "T1").Return(true, nil)
	dir.On("Members", ctx, "T1").Return([]string{"alice", "bob"}, nil)
	repo.On("CreateBatch", ctx, batchOf(2)).Return(errors.New("disk full"))

	items, err := svc.Publish(ctx, "T1", domainNotification.ToTenant(), testContent)
	assert.Nil(t, items)
	require.ErrorIs(t, err, domainNotification.ErrPersistence)

	var pe *domainNotification.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, []string{"alice", "bob"}, pe.Recipients)
	// 未设置 PushToUser 期望：写入失败时不推送
}

func TestService_Publish_MissingTenant(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Publish(context.Background(), " ", domainNotification.ToUser("alice"), testContent)
	assert.ErrorIs(t, err, domainNotification.ErrPersistence)
	assert.ErrorIs(t, err, domainNotification.ErrMissingTenant)
}

func TestService_Publish_InvalidContent(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Publish(context.Background(), "T1", domainNotification.ToUser("alice"), domainNotification.Content{Title: "no message"})
	assert.ErrorIs(t, err, domainNotification.ErrInvalidContent)
}

func TestService_Publish_PushFailureIsSwallowed(t *testing.T) {
	svc, repo, _, pusher := newTestService(t)
	ctx := context.Background()

	repo.On("CreateBatch", ctx, batchOf(1)).Return(nil)
	pusher.On("PushToUser", ctx, "alice", mock.Anything).Return(0, errors.New("connection closed"))

	items, err := svc.Publish(ctx, "T1", domainNotification.ToUser("alice"), testContent)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

type panickingPusher struct{}

func (panickingPusher) PushToUser(context.Context, string, *domainNotification.Notification) (int, error) {
	panic("boom")
}

func TestService_Publish_PushPanicIsRecovered(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := NewService(repo, domainNotification.NewService(), mocks.NewMockDirectory(t), panickingPusher{})
	ctx := context.Background()

	repo.On("CreateBatch", ctx, batchOf(1)).Return(nil)

	items, err := svc.Publish(ctx, "T1", domainNotification.ToUser("alice"), testContent)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestService_PublishTemplate(t *testing.T) {
	svc, repo, dir, pusher := newTestService(t)
	ctx := context.Background()

	dir.On("TenantExists", ctx, "T1").Return(true, nil)
	dir.On("Resolve", ctx, "T1", domainNotification.ApproverRoles).Return([]string{"alice"}, nil)
	repo.On("CreateBatch", ctx, batchOf(1)).Return(nil)
	pusher.On("PushToUser", ctx, "alice", mock.Anything).Return(1, nil)

	items, err := svc.PublishTemplate(ctx, "T1", domainNotification.Target{}, "approval.timesheet", domainNotification.TemplateVars{
		"employeeName":  "Bob",
		"weekStartDate": "2026-10-05",
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Timesheet Pending Approval", items[0].Title)
	assert.Equal(t, "approval", items[0].Category)

	_, err = svc.PublishTemplate(ctx, "T1", domainNotification.Target{}, "timesheet.approved", nil)
	assert.ErrorIs(t, err, domainNotification.ErrInvalidTarget)

	_, err = svc.PublishTemplate(ctx, "T1", domainNotification.ToUser("bob"), "payroll.run", nil)
	assert.ErrorIs(t, err, domainNotification.ErrUnknownTemplate)
}

func TestService_List(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now()
	svc.now = func() time.Time { return now }

	expectedFilter := domainNotification.Filter{Category: "approval", UnreadOnly: true}
	page := domainNotification.NewPage([]*domainNotification.Notification{
		{ID: "n1", TenantID: "T1", UserID: "alice", Title: "t", Message: "m", CreatedAt: now},
	}, 3, domainNotification.Pagination{Limit: 1})
	repo.On("List", ctx, "T1", "alice", expectedFilter, domainNotification.Pagination{Limit: 1}, now).Return(page, nil)

	result, err := svc.List(ctx, "T1", "alice", ListQuery{Category: "approval", IncludeRead: false, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.True(t, result.HasMore)
	require.Len(t, result.Notifications, 1)
	assert.False(t, result.Notifications[0].IsRead)
}

func TestService_ReadState(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now()
	svc.now = func() time.Time { return now }

	repo.On("CountUnread", ctx, "T1", "alice", now).Return(4, nil)
	repo.On("MarkRead", ctx, "n1", "T1", "alice", now).Return(nil)
	repo.On("MarkRead", ctx, "n1", "T2", "alice", now).Return(domainNotification.ErrNotFound)
	repo.On("MarkAllRead", ctx, "T1", "alice", now).Return(3, nil)
	repo.On("Delete", ctx, "n1", "T1", "bob").Return(domainNotification.ErrNotFound)

	count, err := svc.UnreadCount(ctx, "T1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	assert.NoError(t, svc.MarkRead(ctx, "n1", "T1", "alice"))
	assert.ErrorIs(t, svc.MarkRead(ctx, "n1", "T2", "alice"), domainNotification.ErrNotFound)

	affected, err := svc.MarkAllRead(ctx, "T1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, affected)

	assert.ErrorIs(t, svc.Delete(ctx, "n1", "T1", "bob"), domainNotification.ErrNotFound)
}
