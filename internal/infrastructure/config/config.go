package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// 环境变量名
const (
	EnvConfigFile      = "TIMEPULSE_CONFIG"
	EnvHTTPPort        = "TIMEPULSE_HTTP_PORT"
	EnvDBPath          = "TIMEPULSE_DB_PATH"
	EnvJWTSecret       = "JWT_SECRET"
	EnvAllowMockAuth   = "TIMEPULSE_ALLOW_MOCK_AUTH"
	EnvFrontendURL     = "FRONTEND_URL"
	EnvCleanupInterval = "TIMEPULSE_CLEANUP_INTERVAL"
)

var validate = validator.New()

// Config 应用配置
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	WebSocket    WebSocketConfig    `yaml:"websocket"`
	Auth         AuthConfig         `yaml:"auth"`
	Notification NotificationConfig `yaml:"notification"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort       string   `yaml:"http_port" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// DataDir 数据根目录，Path 为空时数据库放在此目录下
	DataDir string `yaml:"data_dir" validate:"required_without=Path"`
	Path    string `yaml:"path"`
}

// WebSocketConfig WebSocket 配置
type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size" validate:"gte=0"`
	WriteBufferSize int `yaml:"write_buffer_size" validate:"gte=0"`
	// SendBufferSize 每个连接的发送队列长度，满时丢弃事件
	SendBufferSize int           `yaml:"send_buffer_size" validate:"gt=0"`
	AuthTimeout    time.Duration `yaml:"auth_timeout" validate:"gt=0"`
	// HeartbeatInterval 服务端 Ping 间隔，必须小于 HeartbeatTimeout
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" validate:"gt=0,ltfield=HeartbeatTimeout"`
	HeartbeatTimeout  time.Duration `yaml:"heartbeat_timeout" validate:"gt=0"`
	MaxMessageSize    int64         `yaml:"max_message_size" validate:"gte=0"`
	// EventsPerSecond 客户端上行事件限流，0 表示不限流；限流时 EventBurst 至少为 1
	EventsPerSecond float64 `yaml:"events_per_second" validate:"gte=0"`
	EventBurst      int     `yaml:"event_burst" validate:"required_with=EventsPerSecond,gte=0"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	// AllowMock 是否接受 mock-jwt-token，仅用于开发环境
	AllowMock bool `yaml:"allow_mock"`
}

// NotificationConfig 通知配置
type NotificationConfig struct {
	// CleanupInterval 过期通知清理间隔，默认 0 不清理
	CleanupInterval time.Duration `yaml:"cleanup_interval" validate:"gte=0"`
}

// NewConfig 创建配置（默认值）
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:       ":5001",
			AllowedOrigins: []string{"http://localhost:3000", "https://app.timepulse.io"},
		},
		Database: DatabaseConfig{
			DataDir: defaultDataDir(os.UserHomeDir),
			Path:    "",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:    1024,
			WriteBufferSize:   1024,
			SendBufferSize:    64,
			AuthTimeout:       10 * time.Second,
			HeartbeatInterval: 25 * time.Second,
			HeartbeatTimeout:  60 * time.Second,
			MaxMessageSize:    8 * 1024,
			EventsPerSecond:   20,
			EventBurst:        40,
		},
		Auth: AuthConfig{
			JWTSecret: "",
			Issuer:    "timepulse",
			AllowMock: false,
		},
		Notification: NotificationConfig{
			CleanupInterval: 0,
		},
	}
}

// Load 加载配置：默认值 -> 配置文件 -> 环境变量，最后校验
func Load() (*Config, error) {
	cfg := NewConfig()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// loadFile 读取 YAML 配置文件，未出现的字段保留默认值
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv 环境变量覆盖
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvHTTPPort); v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		c.Server.HTTPPort = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.Database.DataDir = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv(EnvAllowMockAuth); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAllowMockAuth, err)
		}
		c.Auth.AllowMock = b
	}
	if v := os.Getenv(EnvFrontendURL); v != "" {
		origins := make([]string, 0)
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	if v := os.Getenv(EnvCleanupInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvCleanupInterval, err)
		}
		c.Notification.CleanupInterval = d
	}
	return nil
}

// NewDatabaseConfig 创建数据库配置
func NewDatabaseConfig(cfg *Config) *DatabaseConfig {
	return &cfg.Database
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewWebSocketConfig 创建 WebSocket 配置
func NewWebSocketConfig(cfg *Config) *WebSocketConfig {
	return &cfg.WebSocket
}

// NewAuthConfig 创建认证配置
func NewAuthConfig(cfg *Config) *AuthConfig {
	return &cfg.Auth
}

// NewNotificationConfig 创建通知配置
func NewNotificationConfig(cfg *Config) *NotificationConfig {
	return &cfg.Notification
}
