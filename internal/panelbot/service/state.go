// Package service 提供业务逻辑层的服务实现
// 包括账号绑定、节点选择、实例编排、删除确认和面板诊断
package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/internal/panelbot/repository"
	"github.com/jimyag/panelbot/pkg/apierror"
)

// State 进程内的绑定关系、绑定码和实例归属三张表
// 启动时从仓库加载，每次修改后立即整表写回
// 一把锁同时保护内存表和写盘，写盘不会交错
type State struct {
	store repository.Store

	mu         sync.Mutex
	links      map[string]int
	codes      map[string]entity.AuthCode
	ownerships map[string][]int
}

// NewState 从仓库加载本地状态，加载失败的表记录日志后以空表启动
func NewState(ctx context.Context, store repository.Store) *State {
	logger := zerolog.Ctx(ctx)

	links, err := store.LoadLinks(ctx)
	if err != nil {
		logger.Error().Err(err).Str("table", repository.TableLinks).Msg("Failed to load table, starting empty")
		links = map[string]int{}
	}
	codes, err := store.LoadAuthCodes(ctx)
	if err != nil {
		logger.Error().Err(err).Str("table", repository.TableAuthCodes).Msg("Failed to load table, starting empty")
		codes = map[string]entity.AuthCode{}
	}
	ownerships, err := store.LoadOwnerships(ctx)
	if err != nil {
		logger.Error().Err(err).Str("table", repository.TableOwnerships).Msg("Failed to load table, starting empty")
		ownerships = map[string][]int{}
	}

	logger.Info().
		Int("links", len(links)).
		Int("auth_codes", len(codes)).
		Int("ownerships", len(ownerships)).
		Msg("Local state loaded")

	return &State{
		store:      store,
		links:      links,
		codes:      codes,
		ownerships: ownerships,
	}
}

// ==================== 绑定关系 ====================

// PanelUserIDOf 返回聊天账号绑定的面板账号
func (s *State) PanelUserIDOf(externalUserID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.links[externalUserID]
	return id, ok
}

// IsLinked 聊天账号是否已经绑定
func (s *State) IsLinked(externalUserID string) bool {
	_, ok := s.PanelUserIDOf(externalUserID)
	return ok
}

// ==================== 绑定码 ====================

// IssueAuthCode 生成并保存新的绑定码
// 顺带清理已经过期的绑定码，newCode 生成的码与现有码冲突时重新生成
func (s *State) IssueAuthCode(
	ctx context.Context,
	externalUserID string,
	now time.Time,
	ttl time.Duration,
	newCode func() (string, error),
) (entity.AuthCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for code, c := range s.codes {
		if c.Expired(now, ttl) {
			delete(s.codes, code)
		}
	}

	var code string
	for {
		var err error
		code, err = newCode()
		if err != nil {
			return entity.AuthCode{}, err
		}
		if _, exists := s.codes[code]; !exists {
			break
		}
	}

	c := entity.AuthCode{Code: code, ExternalUserID: externalUserID, IssuedAt: now}
	s.codes[code] = c
	s.saveAuthCodes(ctx)
	return c, nil
}

// AuthCode 查找绑定码
func (s *State) AuthCode(code string) (entity.AuthCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[code]
	return c, ok
}

// CompleteLink 写入绑定关系并删除已使用的绑定码
func (s *State) CompleteLink(ctx context.Context, code, externalUserID string, panelUserID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.links[externalUserID] = panelUserID
	delete(s.codes, code)
	s.saveLinks(ctx)
	s.saveAuthCodes(ctx)
}

// ==================== 实例归属 ====================

// Instances 返回用户拥有的实例 ID
func (s *State) Instances(externalUserID string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ownerships[externalUserID])
}

// ReplaceInstances 用面板上的实例列表替换用户的归属记录
func (s *State) ReplaceInstances(ctx context.Context, externalUserID string, instanceIDs []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(instanceIDs))
	for _, id := range instanceIDs {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	s.ownerships[externalUserID] = ids
	s.saveOwnerships(ctx)
}

// AppendInstance 记录新创建的实例
func (s *State) AppendInstance(ctx context.Context, externalUserID string, instanceID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.ownerships[externalUserID], instanceID) {
		return
	}
	s.ownerships[externalUserID] = append(s.ownerships[externalUserID], instanceID)
	s.saveOwnerships(ctx)
}

// RemoveInstance 从所有用户的归属记录中删除实例
func (s *State) RemoveInstance(ctx context.Context, instanceID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	for ext, ids := range s.ownerships {
		if i := slices.Index(ids, instanceID); i >= 0 {
			s.ownerships[ext] = slices.Delete(slices.Clone(ids), i, i+1)
			removed = true
		}
	}
	if removed {
		s.saveOwnerships(ctx)
	}
	return removed
}

// ==================== 持久化 ====================
// 写盘失败只记录日志，远端结果以面板为准，下一次 sync 会修正本地缓存

func (s *State) saveLinks(ctx context.Context) {
	if err := s.store.SaveLinks(ctx, s.links); err != nil {
		logPersistenceFailure(ctx, repository.TableLinks, err)
	}
}

func (s *State) saveAuthCodes(ctx context.Context) {
	if err := s.store.SaveAuthCodes(ctx, s.codes); err != nil {
		logPersistenceFailure(ctx, repository.TableAuthCodes, err)
	}
}

func (s *State) saveOwnerships(ctx context.Context) {
	if err := s.store.SaveOwnerships(ctx, s.ownerships); err != nil {
		logPersistenceFailure(ctx, repository.TableOwnerships, err)
	}
}

func logPersistenceFailure(ctx context.Context, table string, err error) {
	zerolog.Ctx(ctx).Error().
		Err(apierror.Wrap(apierror.ErrPersistence, err)).
		Str("table", table).
		Msg("Failed to persist local state, local cache may diverge until next sync")
}
