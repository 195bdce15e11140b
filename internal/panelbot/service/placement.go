package service

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/pkg/apierror"
	"github.com/jimyag/panelbot/pkg/pterodactyl"
)

// PlacementService 为新实例选择节点和空闲 allocation
type PlacementService struct {
	panel pterodactyl.PanelClient

	shuffle func(n int, swap func(i, j int))
	intN    func(n int) int
}

// NewPlacementService 创建节点选择服务
func NewPlacementService(panel pterodactyl.PanelClient) *PlacementService {
	return &PlacementService{
		panel:   panel,
		shuffle: rand.Shuffle,
		intN:    rand.IntN,
	}
}

// SelectPlacement 选择一个空闲 allocation
// 节点顺序随机打乱，第一个有空闲 allocation 的节点胜出，从该节点的空闲集合中随机选一个
// exclude 中的 allocation 不会被选中，用于冲突后重试
// 所有节点都没有空闲 allocation 时返回 NoCapacity
func (s *PlacementService) SelectPlacement(ctx context.Context, exclude ...int) (*entity.PlacementCandidate, error) {
	logger := zerolog.Ctx(ctx)

	nodes, err := s.panel.ListNodes(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list nodes")
		return nil, err
	}

	s.shuffle(len(nodes), func(i, j int) {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	})

	var lastErr error
	for _, node := range nodes {
		if node.MaintenanceMode {
			logger.Debug().Int("node_id", node.ID).Msg("Skipping node in maintenance mode")
			continue
		}

		allocs, err := s.panel.ListAllocations(ctx, node.ID)
		if err != nil {
			// 单个节点失败不影响其他节点
			logger.Warn().Err(err).Int("node_id", node.ID).Msg("Failed to list allocations")
			lastErr = err
			continue
		}

		free := make([]pterodactyl.Allocation, 0, len(allocs))
		for _, a := range allocs {
			if !a.Assigned && !slices.Contains(exclude, a.ID) {
				free = append(free, a)
			}
		}
		if len(free) == 0 {
			continue
		}

		alloc := free[s.intN(len(free))]
		candidate := &entity.PlacementCandidate{
			NodeID:       node.ID,
			NodeName:     node.Name,
			AllocationID: alloc.ID,
			IP:           alloc.IP,
			Port:         alloc.Port,
		}
		if alloc.Alias != nil {
			candidate.Alias = *alloc.Alias
		}

		logger.Info().
			Int("node_id", node.ID).
			Int("allocation_id", alloc.ID).
			Int("free_allocations", len(free)).
			Msg("Placement selected")
		return candidate, nil
	}

	// 有节点查询失败且没有找到空闲 allocation，无法确定是否真的没有容量
	if lastErr != nil {
		return nil, lastErr
	}

	logger.Warn().Int("nodes", len(nodes)).Msg("No free allocation on any node")
	return nil, apierror.ErrNoCapacity
}
