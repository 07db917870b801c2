package config

import "path/filepath"

const (
	// EnvDataDir 数据目录环境变量名
	EnvDataDir = "TIMEPULSE_DATA_DIR"
	// DefaultDataDirName 默认数据目录名
	DefaultDataDirName = ".timepulse"
	// DefaultDBFileName 默认数据库文件名
	DefaultDBFileName = "timepulse.db"
)

// defaultDataDir 默认数据目录 ~/.timepulse，取不到 home 时回退到当前目录
func defaultDataDir(userHomeDir func() (string, error)) string {
	home, err := userHomeDir()
	if err != nil || home == "" {
		return DefaultDataDirName
	}
	return filepath.Join(home, DefaultDataDirName)
}

// DBPath 数据库文件路径，显式配置的 Path 优先
func (c *DatabaseConfig) DBPath() string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(c.DataDir, DefaultDBFileName)
}
