package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/timepulse/backend/internal/infrastructure/config"
	"github.com/timepulse/backend/internal/infrastructure/log"
)

// GetDBPath 获取数据库路径，未传配置时使用默认数据目录
func GetDBPath(cfg *config.DatabaseConfig) string {
	if cfg == nil {
		cfg = &config.NewConfig().Database
	}
	return cfg.DBPath()
}

// OpenDB 打开数据库连接并执行迁移
func OpenDB(dbPath string) (*sqlx.DB, error) {
	// 确保目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", dbPath)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite 单写者，串行化写入避免 SQLITE_BUSY
	db.SetMaxOpenConns(1)

	// 测试连接
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// ProvideDB 提供数据库连接（wire provider）
func ProvideDB(cfg *config.DatabaseConfig) (*sqlx.DB, func(), error) {
	logger := log.NewModuleLogger("storage", "db")
	dbPath := GetDBPath(cfg)

	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database opened", slog.String("path", dbPath))

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", slog.String("error", err.Error()))
		}
	}
	return db, cleanup, nil
}
