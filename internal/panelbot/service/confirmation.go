package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/pkg/apierror"
	"github.com/jimyag/panelbot/pkg/idgen"
)

// DefaultConfirmTimeout 删除确认的有效期
const DefaultConfirmTimeout = 60 * time.Second

// ConfirmationService 删除确认服务
// 每个删除请求先登记为 PendingConfirmation，用户确认后执行删除，取消或超时后作废
type ConfirmationService struct {
	instances *InstanceService
	idGen     *idgen.Generator
	timeout   time.Duration
	now       func() time.Time

	mu      sync.Mutex
	pending map[string]*entity.DeleteConfirmation
}

// NewConfirmationService 创建删除确认服务
func NewConfirmationService(instances *InstanceService, timeout time.Duration) *ConfirmationService {
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	return &ConfirmationService{
		instances: instances,
		idGen:     idgen.New(),
		timeout:   timeout,
		now:       time.Now,
		pending:   make(map[string]*entity.DeleteConfirmation),
	}
}

// RequestDeletion 登记一次删除请求
// 登记前校验实例属于该用户，非所有者直接失败
func (s *ConfirmationService) RequestDeletion(ctx context.Context, externalUserID string, instanceID int) (*entity.DeleteConfirmation, error) {
	inst, err := s.instances.Get(ctx, externalUserID, instanceID)
	if err != nil {
		return nil, err
	}

	id, err := s.idGen.GenerateConfirmationID()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to generate confirmation ID", err)
	}

	now := s.now()
	c := &entity.DeleteConfirmation{
		ID:             id,
		ExternalUserID: externalUserID,
		InstanceID:     instanceID,
		InstanceName:   inst.Name,
		State:          entity.ConfirmationStatePending,
		ExpiresAt:      now.Add(s.timeout),
	}

	s.mu.Lock()
	s.pruneLocked(now)
	s.pending[id] = c
	s.mu.Unlock()

	zerolog.Ctx(ctx).Info().
		Str("external_user_id", externalUserID).
		Int("instance_id", instanceID).
		Str("confirmation_id", id).
		Msg("Deletion pending confirmation")

	out := *c
	return &out, nil
}

// Confirm 确认删除，执行删除后返回 Confirmed 状态
// 确认只能使用一次，删除失败时需要重新申请
func (s *ConfirmationService) Confirm(ctx context.Context, externalUserID, confirmationID string) (*entity.DeleteConfirmation, error) {
	c, err := s.take(externalUserID, confirmationID)
	if err != nil {
		return nil, err
	}

	if err := s.instances.Delete(ctx, c.InstanceID, externalUserID); err != nil {
		return nil, err
	}

	c.State = entity.ConfirmationStateConfirmed
	return c, nil
}

// Cancel 取消删除
func (s *ConfirmationService) Cancel(ctx context.Context, externalUserID, confirmationID string) (*entity.DeleteConfirmation, error) {
	c, err := s.take(externalUserID, confirmationID)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("external_user_id", externalUserID).
		Int("instance_id", c.InstanceID).
		Str("confirmation_id", confirmationID).
		Msg("Deletion cancelled")

	c.State = entity.ConfirmationStateCancelled
	return c, nil
}

// take 取出并移除一个未过期且属于该用户的确认
func (s *ConfirmationService) take(externalUserID, confirmationID string) (*entity.DeleteConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	c, ok := s.pending[confirmationID]
	if !ok || c.ExternalUserID != externalUserID {
		return nil, apierror.ErrConfirmationNotFound
	}
	delete(s.pending, confirmationID)
	return c, nil
}

// pruneLocked 删除过期的确认，调用方需要持有 s.mu
func (s *ConfirmationService) pruneLocked(now time.Time) {
	for id, c := range s.pending {
		if !now.Before(c.ExpiresAt) {
			delete(s.pending, id)
		}
	}
}
