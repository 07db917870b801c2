package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/timepulse/backend/internal/domain/notification"
)

// MockDirectory notification.Directory 的 mock
type MockDirectory struct {
	mock.Mock
}

var _ notification.Directory = (*MockDirectory)(nil)

// NewMockDirectory 创建 mock，并在测试结束时校验期望
func NewMockDirectory(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockDirectory {
	m := &MockDirectory{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockDirectory) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	ret := m.Called(ctx, tenantID)
	return ret.Bool(0), ret.Error(1)
}

func (m *MockDirectory) Members(ctx context.Context, tenantID string) ([]string, error) {
	ret := m.Called(ctx, tenantID)
	ids, _ := ret.Get(0).([]string)
	return ids, ret.Error(1)
}

func (m *MockDirectory) Resolve(ctx context.Context, tenantID string, roles []string) ([]string, error) {
	ret := m.Called(ctx, tenantID, roles)
	ids, _ := ret.Get(0).([]string)
	return ids, ret.Error(1)
}
