package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/timepulse/backend/internal/domain/notification"
)

// MockPusher Pusher 的 mock
type MockPusher struct {
	mock.Mock
}

// NewMockPusher 创建 mock，并在测试结束时校验期望
func NewMockPusher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPusher {
	m := &MockPusher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPusher) PushToUser(ctx context.Context, userID string, n *notification.Notification) (int, error) {
	ret := m.Called(ctx, userID, n)
	return ret.Int(0), ret.Error(1)
}
