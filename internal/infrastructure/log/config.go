package log

import (
	"os"
	"strconv"
	"strings"
)

// 日志相关环境变量
const (
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
	EnvLogOutput    = "LOG_OUTPUT"
	EnvLogAddSource = "LOG_ADD_SOURCE"
	// EnvEnvironment 为 development 时强制 debug + console
	EnvEnvironment = "ENV"
)

// Config 日志配置
type Config struct {
	// Level 日志级别：debug, info, warn, error
	Level string
	// Format 日志格式：console, json, text
	Format string
	// Output 输出目标：stdout, stderr, file:/path/to/log
	Output string
	// AddSource 是否添加源文件信息
	AddSource bool
}

// NewConfigFromEnv 从环境变量创建配置
func NewConfigFromEnv() *Config {
	cfg := &Config{
		Level:     envOr(EnvLogLevel, "info"),
		Format:    envOr(EnvLogFormat, "console"),
		Output:    envOr(EnvLogOutput, "stdout"),
		AddSource: getEnvBool(EnvLogAddSource, false),
	}

	if IsDevelopment() {
		cfg.Level = "debug"
		cfg.Format = "console"
		cfg.AddSource = true
	}
	return cfg
}

// IsDevelopment 是否为开发环境
func IsDevelopment() bool {
	return strings.EqualFold(os.Getenv(EnvEnvironment), "development")
}

func envOr(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool 解析失败时返回默认值
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
