package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
)

// FileStore 每张表保存为 dataDir 下的一个 JSON 文件
type FileStore struct {
	dir string
	// mu 保证同一时刻只有一个写操作，写入不会交错
	mu sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore 创建 JSON 文件仓库
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path 获取表文件路径
func (s *FileStore) path(table string) string {
	return filepath.Join(s.dir, table+".json")
}

func loadTable[T any](s *FileStore, table string) (map[string]T, error) {
	out := make(map[string]T)
	data, err := os.ReadFile(s.path(table))
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return out, fmt.Errorf("read %s: %w", table, err)
	}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return make(map[string]T), fmt.Errorf("unmarshal %s: %w", table, err)
	}
	return out, nil
}

// saveTable 先写临时文件再重命名，避免写到一半的文件
func saveTable[T any](s *FileStore, table string, rows map[string]T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rows == nil {
		rows = map[string]T{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", table, err)
	}

	path := s.path(table)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", table, err)
	}
	return nil
}

func (s *FileStore) LoadLinks(_ context.Context) (map[string]int, error) {
	return loadTable[int](s, TableLinks)
}

func (s *FileStore) SaveLinks(_ context.Context, links map[string]int) error {
	return saveTable(s, TableLinks, links)
}

func (s *FileStore) LoadAuthCodes(_ context.Context) (map[string]entity.AuthCode, error) {
	return loadTable[entity.AuthCode](s, TableAuthCodes)
}

func (s *FileStore) SaveAuthCodes(_ context.Context, codes map[string]entity.AuthCode) error {
	return saveTable(s, TableAuthCodes, codes)
}

func (s *FileStore) LoadOwnerships(_ context.Context) (map[string][]int, error) {
	return loadTable[[]int](s, TableOwnerships)
}

func (s *FileStore) SaveOwnerships(_ context.Context, ownerships map[string][]int) error {
	return saveTable(s, TableOwnerships, ownerships)
}

// Close 文件仓库没有需要释放的资源
func (s *FileStore) Close() error {
	return nil
}
