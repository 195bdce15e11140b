package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // 纯 Go SQLite 驱动，不需要 CGO

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/internal/panelbot/repository/model"
)

// SQLiteFileName sqlite 后端的数据库文件名
const SQLiteFileName = "panelbot.db"

// SQLitePath 获取数据目录下的数据库路径
func SQLitePath(dataDir string) string {
	return filepath.Join(dataDir, SQLiteFileName)
}

// SQLiteStore 基于 gorm 的仓库
// Save 在一个事务里整表替换
type SQLiteStore struct {
	db *gorm.DB
	mu sync.Mutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore 创建新的 SQLite 仓库
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// 确保数据库目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// 直接使用 database/sql + modernc.org/sqlite 创建连接，然后传递给 GORM
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        dbPath,
		Conn:       sqlDB,
	}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	// 自动迁移
	if err := db.AutoMigrate(
		&model.IdentityLink{},
		&model.AuthCode{},
		&model.Ownership{},
	); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// DB 返回 GORM 数据库实例
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// replace 在事务中删除表中所有行再写入 rows
func replace[M any](ctx context.Context, s *SQLiteStore, rows []M) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var zero M
		if err := tx.Where("1 = 1").Delete(&zero).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 100).Error
	})
}

func (s *SQLiteStore) LoadLinks(ctx context.Context) (map[string]int, error) {
	var rows []model.IdentityLink
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return map[string]int{}, fmt.Errorf("load identity links: %w", err)
	}
	links := make(map[string]int, len(rows))
	for _, r := range rows {
		links[r.ExternalUserID] = r.PanelUserID
	}
	return links, nil
}

func (s *SQLiteStore) SaveLinks(ctx context.Context, links map[string]int) error {
	now := time.Now()
	rows := make([]model.IdentityLink, 0, len(links))
	for ext, panelID := range links {
		rows = append(rows, model.IdentityLink{ExternalUserID: ext, PanelUserID: panelID, UpdatedAt: now})
	}
	if err := replace(ctx, s, rows); err != nil {
		return fmt.Errorf("save identity links: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadAuthCodes(ctx context.Context) (map[string]entity.AuthCode, error) {
	var rows []model.AuthCode
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return map[string]entity.AuthCode{}, fmt.Errorf("load auth codes: %w", err)
	}
	codes := make(map[string]entity.AuthCode, len(rows))
	for _, r := range rows {
		codes[r.Code] = entity.AuthCode{Code: r.Code, ExternalUserID: r.ExternalUserID, IssuedAt: r.IssuedAt}
	}
	return codes, nil
}

func (s *SQLiteStore) SaveAuthCodes(ctx context.Context, codes map[string]entity.AuthCode) error {
	rows := make([]model.AuthCode, 0, len(codes))
	for code, c := range codes {
		rows = append(rows, model.AuthCode{Code: code, ExternalUserID: c.ExternalUserID, IssuedAt: c.IssuedAt})
	}
	if err := replace(ctx, s, rows); err != nil {
		return fmt.Errorf("save auth codes: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadOwnerships(ctx context.Context) (map[string][]int, error) {
	var rows []model.Ownership
	if err := s.db.WithContext(ctx).Order("external_user_id, position").Find(&rows).Error; err != nil {
		return map[string][]int{}, fmt.Errorf("load ownerships: %w", err)
	}
	ownerships := make(map[string][]int)
	for _, r := range rows {
		ownerships[r.ExternalUserID] = append(ownerships[r.ExternalUserID], r.InstanceID)
	}
	return ownerships, nil
}

// SaveOwnerships 实例列表为空的用户不会写入任何行，加载后视为没有实例
func (s *SQLiteStore) SaveOwnerships(ctx context.Context, ownerships map[string][]int) error {
	users := make([]string, 0, len(ownerships))
	for ext := range ownerships {
		users = append(users, ext)
	}
	sort.Strings(users)

	var rows []model.Ownership
	for _, ext := range users {
		for i, id := range ownerships[ext] {
			rows = append(rows, model.Ownership{ExternalUserID: ext, InstanceID: id, Position: i})
		}
	}
	if err := replace(ctx, s, rows); err != nil {
		return fmt.Errorf("save ownerships: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
