//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"github.com/timepulse/backend/internal/application"
	"github.com/timepulse/backend/internal/domain/notification"
	"github.com/timepulse/backend/internal/infrastructure"
	"github.com/timepulse/backend/internal/interfaces"
)

// InitializeAll 初始化所有服务，cleanup 负责关闭数据库
func InitializeAll() (*App, func(), error) {
	wire.Build(
		// 按层组合 ProviderSet
		infrastructure.ProviderSet, // 基础设施层
		notification.ProviderSet,   // 领域层
		application.ProviderSet,    // 应用层
		interfaces.ProviderSet,     // 接口层
		NewApp,
	)
	return nil, nil, nil
}
