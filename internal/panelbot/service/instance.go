package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/pkg/apierror"
	"github.com/jimyag/panelbot/pkg/idgen"
	"github.com/jimyag/panelbot/pkg/pterodactyl"
)

// DefaultMaxInstancesPerUser 每个用户默认最多拥有的实例数量
const DefaultMaxInstancesPerUser = 2

// 创建服务器时使用的固定参数
const (
	serverSwapMB          = 0
	serverIOWeight        = 500
	serverDatabases       = 1
	serverBackups         = 1
	serverAllocations     = 1
	serverDescriptionText = "Server created with %s template via Discord bot"
)

// InstanceService 实例服务，管理用户在面板上的实例
// 负责配额检查、创建、列表、同步和删除，并维护本地实例归属缓存
type InstanceService struct {
	state      *State
	panel      pterodactyl.PanelClient
	placement  *PlacementService
	templates  *TemplateCatalog
	maxPerUser int
	userLocks  *keyedMutex
	idGen      *idgen.Generator
}

// NewInstanceService 创建新的 Instance Service
func NewInstanceService(
	state *State,
	panel pterodactyl.PanelClient,
	placement *PlacementService,
	templates *TemplateCatalog,
	maxPerUser int,
) *InstanceService {
	if maxPerUser < 0 {
		maxPerUser = DefaultMaxInstancesPerUser
	}
	return &InstanceService{
		state:      state,
		panel:      panel,
		placement:  placement,
		templates:  templates,
		maxPerUser: maxPerUser,
		userLocks:  newKeyedMutex(),
		idGen:      idgen.New(),
	}
}

// MaxInstancesPerUser 每个用户最多拥有的实例数量
func (s *InstanceService) MaxInstancesPerUser() int {
	return s.maxPerUser
}

// Sync 从面板拉取用户拥有的实例，替换本地归属记录
// 用户没有绑定时返回 false
func (s *InstanceService) Sync(ctx context.Context, externalUserID string) (bool, error) {
	_, linked, err := s.sync(ctx, externalUserID)
	return linked, err
}

func (s *InstanceService) sync(ctx context.Context, externalUserID string) ([]pterodactyl.Server, bool, error) {
	logger := zerolog.Ctx(ctx)

	panelUserID, ok := s.state.PanelUserIDOf(externalUserID)
	if !ok {
		return nil, false, nil
	}

	servers, err := s.panel.ListServersByOwner(ctx, panelUserID)
	if err != nil {
		logger.Error().Err(err).
			Str("external_user_id", externalUserID).
			Int("panel_user_id", panelUserID).
			Msg("Failed to sync instances")
		return nil, true, err
	}

	ids := make([]int, 0, len(servers))
	for _, server := range servers {
		ids = append(ids, server.ID)
	}
	s.state.ReplaceInstances(ctx, externalUserID, ids)

	logger.Debug().
		Str("external_user_id", externalUserID).
		Ints("instance_ids", ids).
		Msg("Instances synced")
	return servers, true, nil
}

// Instances 本地缓存的实例归属
func (s *InstanceService) Instances(externalUserID string) []int {
	return s.state.Instances(externalUserID)
}

// CanCreate 先同步再检查用户是否还能创建实例
func (s *InstanceService) CanCreate(ctx context.Context, externalUserID string) (bool, error) {
	quota, err := s.Quota(ctx, externalUserID)
	if err != nil {
		return false, err
	}
	return quota.CanCreate, nil
}

// Quota 查询用户配额
func (s *InstanceService) Quota(ctx context.Context, externalUserID string) (*entity.QuotaStatus, error) {
	_, linked, err := s.sync(ctx, externalUserID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, apierror.ErrNotLinked
	}
	used := len(s.state.Instances(externalUserID))
	return &entity.QuotaStatus{
		Used:      used,
		Max:       s.maxPerUser,
		CanCreate: used < s.maxPerUser,
	}, nil
}

// Create 为用户创建实例
// 状态流转：Requested → PlacementSelected → SpecResolved → Submitted → Succeeded | Failed
// 只有面板返回了实例 ID 才会写入本地归属记录
func (s *InstanceService) Create(ctx context.Context, req *entity.CreateInstanceRequest) (*entity.Instance, error) {
	l := zerolog.Ctx(ctx).With().
		Str("external_user_id", req.ExternalUserID).
		Str("template", req.TemplateName).
		Logger()
	logger := &l
	ctx = logger.WithContext(ctx)

	state := entity.CreationStateRequested
	transition := func(next entity.CreationState) {
		logger.Info().Str("from", string(state)).Str("to", string(next)).Msg("Instance creation state changed")
		state = next
	}
	fail := func(err error) (*entity.Instance, error) {
		logger.Warn().Err(err).Str("state", string(state)).Msg("Instance creation failed")
		state = entity.CreationStateFailed
		return nil, err
	}

	logger.Info().Str("state", string(state)).Msg("Creating instance")

	panelUserID, ok := s.state.PanelUserIDOf(req.ExternalUserID)
	if !ok {
		return fail(apierror.ErrNotLinked)
	}

	tpl, err := s.templates.Get(req.TemplateName)
	if err != nil {
		return fail(err)
	}

	// 同一用户的创建和删除串行执行，避免并发创建同时通过配额检查
	unlock := s.userLocks.Lock(req.ExternalUserID)
	defer unlock()

	canCreate, err := s.CanCreate(ctx, req.ExternalUserID)
	if err != nil {
		return fail(err)
	}
	if !canCreate {
		return fail(apierror.WrapError(apierror.ErrQuotaExceeded,
			fmt.Sprintf("You can only have %d servers. Delete a server before creating a new one.", s.maxPerUser), nil))
	}

	name, err := s.instanceName(req.Name, tpl, req.DisplayName)
	if err != nil {
		return fail(err)
	}

	candidate, err := s.placement.SelectPlacement(ctx)
	if err != nil {
		return fail(err)
	}
	transition(entity.CreationStatePlacementSelected)

	spec, err := s.ResolveSpec(ctx, tpl.Name)
	if err != nil {
		return fail(err)
	}
	transition(entity.CreationStateSpecResolved)

	createReq := buildCreateServerRequest(name, panelUserID, tpl, spec, candidate)
	transition(entity.CreationStateSubmitted)
	server, err := s.panel.CreateServer(ctx, createReq)

	// allocation 被并发请求抢占时重新选择一次
	if errors.Is(err, apierror.ErrPlacementConflict) {
		logger.Warn().Int("allocation_id", candidate.AllocationID).Msg("Allocation already assigned, selecting another one")
		candidate, err = s.placement.SelectPlacement(ctx, candidate.AllocationID)
		if err != nil {
			return fail(apierror.WrapError(apierror.ErrCreationFailed,
				"The selected allocation was taken by another request. Please try again.", err))
		}
		createReq.Allocation.Default = candidate.AllocationID
		server, err = s.panel.CreateServer(ctx, createReq)
		if errors.Is(err, apierror.ErrPlacementConflict) {
			return fail(apierror.WrapError(apierror.ErrCreationFailed,
				"The selected allocation was taken by another request. Please try again.", err))
		}
	}
	if err != nil {
		return fail(creationError(err))
	}
	if server == nil || server.ID == 0 {
		return fail(apierror.WrapError(apierror.ErrCreationFailed, "The panel did not return a server id.", nil))
	}

	s.state.AppendInstance(ctx, req.ExternalUserID, server.ID)
	transition(entity.CreationStateSucceeded)

	// 创建响应里通常没有 allocation 关联数据，用选中的 allocation 补全连接地址
	if server.DefaultAllocation() == nil {
		server.SetAllocations(pterodactyl.Allocation{
			ID:    candidate.AllocationID,
			IP:    candidate.IP,
			Alias: nonEmpty(candidate.Alias),
			Port:  candidate.Port,
		})
		server.Allocation = candidate.AllocationID
	}
	inst, err := serverToInstance(server, s.panel.BaseURL())
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert server", err)
	}
	inst.State = state

	logger.Info().
		Int("instance_id", server.ID).
		Int("node_id", candidate.NodeID).
		Int("allocation_id", candidate.AllocationID).
		Msg("Instance created")
	return inst, nil
}

// creationError 面板拒绝创建请求时返回 CreationFailed，带上面板给出的错误描述
// 网络错误和 5xx 保持 RemoteTransportFailure
func creationError(err error) error {
	re, ok := pterodactyl.ResponseErrorOf(err)
	if !ok || !re.IsClientError() {
		return err
	}
	msg := apierror.ErrCreationFailed.Message
	if len(re.Details) > 0 {
		if detail := re.Message(); detail != "" {
			msg = detail
		}
	}
	return apierror.WrapError(apierror.ErrCreationFailed, msg, err)
}

func buildCreateServerRequest(
	name string,
	panelUserID int,
	tpl *entity.Template,
	spec *entity.ResolvedSpec,
	candidate *entity.PlacementCandidate,
) *pterodactyl.CreateServerRequest {
	return &pterodactyl.CreateServerRequest{
		Name:        name,
		Description: fmt.Sprintf(serverDescriptionText, tpl.DisplayName),
		User:        panelUserID,
		Egg:         tpl.EggID,
		DockerImage: spec.DockerImage,
		Startup:     spec.Startup,
		Environment: spec.Environment,
		Limits: pterodactyl.Limits{
			Memory: tpl.MemoryMB,
			Swap:   serverSwapMB,
			Disk:   tpl.DiskMB,
			IO:     serverIOWeight,
			CPU:    tpl.CPUHundredths,
		},
		FeatureLimits: pterodactyl.FeatureLimits{
			Databases:   serverDatabases,
			Allocations: serverAllocations,
			Backups:     serverBackups,
		},
		Allocation:        pterodactyl.AllocationRequest{Default: candidate.AllocationID},
		StartOnCompletion: true,
		SkipScripts:       false,
		OOMDisabled:       true,
	}
}

// instanceName 只保留字母、数字、- 和 _，没有指定名称时使用 模板名-显示名
func (s *InstanceService) instanceName(desired string, tpl *entity.Template, displayName string) (string, error) {
	name := sanitize(strings.TrimSpace(desired), "-_")
	if name == "" {
		if suffix := sanitize(displayName, "-_"); suffix != "" {
			name = fmt.Sprintf("%s-%s", tpl.Name, suffix)
		}
	}
	if name == "" {
		id, err := s.idGen.GenerateID()
		if err != nil {
			return "", apierror.WrapError(apierror.ErrInternalError, "Failed to generate instance name", err)
		}
		name = fmt.Sprintf("%s-%08x", tpl.Name, uint32(id))
	}
	return name, nil
}

// List 先同步，再返回面板上该用户的实例
func (s *InstanceService) List(ctx context.Context, externalUserID string) ([]entity.Instance, error) {
	servers, linked, err := s.sync(ctx, externalUserID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, apierror.ErrNotLinked
	}

	instances := make([]entity.Instance, 0, len(servers))
	for i := range servers {
		inst, err := serverToInstance(&servers[i], s.panel.BaseURL())
		if err != nil {
			return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert server", err)
		}
		instances = append(instances, *inst)
	}
	return instances, nil
}

// Get 获取用户拥有的实例
// 实例不存在或不属于该用户时都返回 OwnershipMismatch
func (s *InstanceService) Get(ctx context.Context, externalUserID string, instanceID int) (*entity.Instance, error) {
	server, err := s.ownedServer(ctx, externalUserID, instanceID)
	if err != nil {
		return nil, err
	}
	inst, err := serverToInstance(server, s.panel.BaseURL())
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert server", err)
	}
	return inst, nil
}

// ownedServer 从面板重新获取实例并校验所有者
func (s *InstanceService) ownedServer(ctx context.Context, externalUserID string, instanceID int) (*pterodactyl.Server, error) {
	logger := zerolog.Ctx(ctx)

	panelUserID, ok := s.state.PanelUserIDOf(externalUserID)
	if !ok {
		return nil, apierror.ErrNotLinked
	}

	server, err := s.panel.GetServer(ctx, instanceID)
	if err != nil {
		if re, ok := pterodactyl.ResponseErrorOf(err); ok && re.IsNotFound() {
			return nil, apierror.Wrap(apierror.ErrOwnershipMismatch, err)
		}
		logger.Error().Err(err).Int("instance_id", instanceID).Msg("Failed to get instance")
		return nil, err
	}

	if server.User != panelUserID {
		logger.Warn().
			Str("external_user_id", externalUserID).
			Int("instance_id", instanceID).
			Int("owner", server.User).
			Int("panel_user_id", panelUserID).
			Msg("Instance is owned by another panel user")
		return nil, apierror.ErrOwnershipMismatch
	}
	return server, nil
}

// Delete 删除用户拥有的实例
// 删除前从面板重新获取实例校验所有者，校验失败不做任何修改
// 删除成功后从所有用户的归属记录中移除该实例
func (s *InstanceService) Delete(ctx context.Context, instanceID int, externalUserID string) error {
	logger := zerolog.Ctx(ctx)

	unlock := s.userLocks.Lock(externalUserID)
	defer unlock()

	if _, err := s.ownedServer(ctx, externalUserID, instanceID); err != nil {
		return err
	}

	if err := s.panel.DeleteServer(ctx, instanceID); err != nil {
		logger.Error().Err(err).Int("instance_id", instanceID).Msg("Failed to delete instance")
		return err
	}

	s.state.RemoveInstance(ctx, instanceID)
	logger.Info().
		Str("external_user_id", externalUserID).
		Int("instance_id", instanceID).
		Msg("Instance deleted")
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
