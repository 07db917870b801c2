package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/timepulse/backend/internal/infrastructure/auth"
	"github.com/timepulse/backend/internal/infrastructure/config"
	"github.com/timepulse/backend/internal/infrastructure/storage"
)

// seedFile 种子文件格式
type seedFile struct {
	Tenants []struct {
		ID      string `yaml:"id"`
		Name    string `yaml:"name"`
		Members []struct {
			UserID string `yaml:"user_id"`
			Role   string `yaml:"role"`
		} `yaml:"members"`
	} `yaml:"tenants"`
}

func usage() {
	fmt.Println("用法:")
	fmt.Println("  seed load <seed.yaml>               - 写入租户与成员")
	fmt.Println("  seed members <tenantId>             - 列出租户成员")
	fmt.Println("  seed token <userId> <tenantId> [ttl] - 生成开发用 JWT")
	fmt.Println("")
	fmt.Println("数据库路径与 JWT 密钥读取与服务端相同的配置 (TIMEPULSE_CONFIG / TIMEPULSE_DB_PATH / JWT_SECRET)")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 3 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		fail("加载配置失败: %v", err)
	}

	switch os.Args[1] {
	case "load":
		load(cfg, os.Args[2])
	case "members":
		members(cfg, os.Args[2])
	case "token":
		if len(os.Args) < 4 {
			usage()
		}
		ttl := auth.DefaultTokenTTL
		if len(os.Args) > 4 {
			if ttl, err = time.ParseDuration(os.Args[4]); err != nil {
				fail("无效的有效期: %v", err)
			}
		}
		token(cfg, os.Args[2], os.Args[3], ttl)
	default:
		usage()
	}
}

func load(cfg *config.Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fail("读取种子文件失败: %v", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		fail("解析种子文件失败: %v", err)
	}

	db, err := storage.OpenDB(storage.GetDBPath(&cfg.Database))
	if err != nil {
		fail("打开数据库失败: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := storage.NewMemberRepository(db)
	count := 0
	for _, t := range seed.Tenants {
		if strings.TrimSpace(t.ID) == "" {
			fail("租户 ID 不能为空")
		}
		if err := repo.AddTenant(ctx, t.ID, t.Name); err != nil {
			fail("写入租户 %s 失败: %v", t.ID, err)
		}
		for _, m := range t.Members {
			if err := repo.AddMember(ctx, t.ID, m.UserID, m.Role); err != nil {
				fail("写入成员 %s/%s 失败: %v", t.ID, m.UserID, err)
			}
			count++
		}
	}
	fmt.Printf("✓ 已写入 %d 个租户, %d 个成员\n", len(seed.Tenants), count)
}

func members(cfg *config.Config, tenantID string) {
	db, err := storage.OpenDB(storage.GetDBPath(&cfg.Database))
	if err != nil {
		fail("打开数据库失败: %v", err)
	}
	defer db.Close()

	list, err := storage.NewMemberRepository(db).ListMembers(context.Background(), tenantID)
	if err != nil {
		fail("查询成员失败: %v", err)
	}
	out, err := yaml.Marshal(list)
	if err != nil {
		fail("序列化失败: %v", err)
	}
	fmt.Print(string(out))
}

func token(cfg *config.Config, userID, tenantID string, ttl time.Duration) {
	if cfg.Auth.JWTSecret == "" {
		fail("JWT_SECRET 未设置")
	}
	signed, err := auth.NewJWTAuthenticator(&cfg.Auth).GenerateToken(userID, tenantID, ttl)
	if err != nil {
		fail("生成 token 失败: %v", err)
	}
	fmt.Println(signed)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "错误: "+format+"\n", args...)
	os.Exit(1)
}
