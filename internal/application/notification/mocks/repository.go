package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/timepulse/backend/internal/domain/notification"
)

// MockRepository notification.Repository 的 mock
type MockRepository struct {
	mock.Mock
}

var _ notification.Repository = (*MockRepository)(nil)

// NewMockRepository 创建 mock，并在测试结束时校验期望
func NewMockRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRepository {
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Create(ctx context.Context, n *notification.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockRepository) CreateBatch(ctx context.Context, items []*notification.Notification) error {
	return m.Called(ctx, items).Error(0)
}

func (m *MockRepository) FindByOwner(ctx context.Context, id, tenantID, userID string) (*notification.Notification, error) {
	ret := m.Called(ctx, id, tenantID, userID)
	n, _ := ret.Get(0).(*notification.Notification)
	return n, ret.Error(1)
}

func (m *MockRepository) List(ctx context.Context, tenantID, userID string, filter notification.Filter, page notification.Pagination, now time.Time) (*notification.Page, error) {
	ret := m.Called(ctx, tenantID, userID, filter, page, now)
	p, _ := ret.Get(0).(*notification.Page)
	return p, ret.Error(1)
}

func (m *MockRepository) CountUnread(ctx context.Context, tenantID, userID string, now time.Time) (int, error) {
	ret := m.Called(ctx, tenantID, userID, now)
	return ret.Int(0), ret.Error(1)
}

func (m *MockRepository) MarkRead(ctx context.Context, id, tenantID, userID string, at time.Time) error {
	return m.Called(ctx, id, tenantID, userID, at).Error(0)
}

func (m *MockRepository) MarkAllRead(ctx context.Context, tenantID, userID string, at time.Time) (int, error) {
	ret := m.Called(ctx, tenantID, userID, at)
	return ret.Int(0), ret.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id, tenantID, userID string) error {
	return m.Called(ctx, id, tenantID, userID).Error(0)
}

func (m *MockRepository) DeleteExpired(ctx context.Context, tenantID string, before time.Time) (int, error) {
	ret := m.Called(ctx, tenantID, before)
	return ret.Int(0), ret.Error(1)
}
