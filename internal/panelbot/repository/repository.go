// Package repository 提供本地状态的持久化层实现
//
// 本地状态由三张表组成：绑定关系、绑定码和实例归属。
// 每次修改后由上层整表写回，后端有两种：
//   - json：每张表一个 JSON 文件（默认）
//   - sqlite：gorm + 纯 Go SQLite 驱动
package repository

import (
	"context"
	"fmt"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
)

// 表名，json 后端同时用作文件名
const (
	TableLinks      = "pterodactyl_users"
	TableAuthCodes  = "user_auth_codes"
	TableOwnerships = "user_servers"
)

// 存储后端
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Store 本地状态仓库接口
// Load 在数据不存在时返回空表而不是错误
type Store interface {
	LoadLinks(ctx context.Context) (map[string]int, error)
	SaveLinks(ctx context.Context, links map[string]int) error

	LoadAuthCodes(ctx context.Context) (map[string]entity.AuthCode, error)
	SaveAuthCodes(ctx context.Context, codes map[string]entity.AuthCode) error

	LoadOwnerships(ctx context.Context) (map[string][]int, error)
	SaveOwnerships(ctx context.Context, ownerships map[string][]int) error

	Close() error
}

// New 根据后端类型创建仓库
func New(backend, dataDir string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewFileStore(dataDir)
	case BackendSQLite:
		return NewSQLiteStore(SQLitePath(dataDir))
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
