package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/pkg/pterodactyl"
)

// panelQueryConcurrency 诊断时同时发往面板的请求数
const panelQueryConcurrency = 4

// PanelService 面板诊断服务，只提供给管理员
type PanelService struct {
	panel pterodactyl.PanelClient
}

// NewPanelService 创建面板诊断服务
func NewPanelService(panel pterodactyl.PanelClient) *PanelService {
	return &PanelService{panel: panel}
}

// DescribePanel 列出所有 nest、egg 和节点的 allocation 使用情况
// 单个 nest 或节点查询失败时记录在 Errors 中，不影响其他结果
func (s *PanelService) DescribePanel(ctx context.Context) (*entity.PanelOverview, error) {
	logger := zerolog.Ctx(ctx)

	nests, err := s.panel.ListNests(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list nests")
		return nil, err
	}
	nodes, err := s.panel.ListNodes(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list nodes")
		return nil, err
	}

	overview := &entity.PanelOverview{
		URL:   s.panel.BaseURL(),
		Nests: make([]entity.PanelNest, len(nests)),
		Nodes: make([]entity.PanelNode, len(nodes)),
	}

	var (
		mu   sync.Mutex
		errs []string
	)
	record := func(msg string) {
		mu.Lock()
		errs = append(errs, msg)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(panelQueryConcurrency)

	for i, nest := range nests {
		overview.Nests[i] = entity.PanelNest{ID: nest.ID, Name: nest.Name}
		g.Go(func() error {
			eggs, err := s.panel.ListEggs(gctx, nest.ID)
			if err != nil {
				record(fmt.Sprintf("nest %d: %v", nest.ID, err))
				return nil
			}
			out := make([]entity.PanelEgg, 0, len(eggs))
			for _, egg := range eggs {
				out = append(out, entity.PanelEgg{ID: egg.ID, Name: egg.Name, DockerImage: egg.Image()})
			}
			overview.Nests[i].Eggs = out
			return nil
		})
	}

	for i, node := range nodes {
		overview.Nodes[i] = entity.PanelNode{
			ID:              node.ID,
			Name:            node.Name,
			FQDN:            node.FQDN,
			LocationID:      node.LocationID,
			MaintenanceMode: node.MaintenanceMode,
		}
		g.Go(func() error {
			allocs, err := s.panel.ListAllocations(gctx, node.ID)
			if err != nil {
				record(fmt.Sprintf("node %d: %v", node.ID, err))
				return nil
			}
			free := 0
			for _, a := range allocs {
				if !a.Assigned {
					free++
				}
			}
			overview.Nodes[i].TotalAllocations = len(allocs)
			overview.Nodes[i].FreeAllocations = free
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	overview.Errors = errs
	return overview, nil
}
