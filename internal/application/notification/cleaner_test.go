package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/timepulse/backend/internal/application/notification/mocks"
	domainNotification "github.com/timepulse/backend/internal/domain/notification"
	"github.com/timepulse/backend/internal/infrastructure/config"
)

func TestCleaner_RunsPeriodically(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := NewService(repo, domainNotification.NewService(), mocks.NewMockDirectory(t), mocks.NewMockPusher(t))

	called := make(chan struct{}, 10)
	repo.On("DeleteExpired", mock.Anything, "", mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) { called <- struct{}{} }).
		Return(1, nil)

	cleaner := NewCleaner(svc, &config.NotificationConfig{CleanupInterval: 10 * time.Millisecond})
	cleaner.Start()
	cleaner.Start() // 重复启动为空操作

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup was not triggered")
	}

	cleaner.Stop()
	cleaner.Stop()
}

// 默认配置下过期通知保留在库中，只在查询时被排除
func TestCleaner_DisabledByDefault(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := NewService(repo, domainNotification.NewService(), mocks.NewMockDirectory(t), mocks.NewMockPusher(t))

	cleaner := NewCleaner(svc, &config.NewConfig().Notification)
	cleaner.Start()
	time.Sleep(20 * time.Millisecond)
	cleaner.Stop()

	repo.AssertNotCalled(t, "DeleteExpired", mock.Anything, mock.Anything, mock.Anything)
	assert.NotNil(t, cleaner)
}
