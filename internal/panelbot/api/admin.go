package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/pkg/ginx"
)

// PanelServiceInterface 定义面板诊断服务的接口
type PanelServiceInterface interface {
	DescribePanel(ctx context.Context) (*entity.PanelOverview, error)
}

// Admin 管理接口，返回面板的原始信息
type Admin struct {
	instanceService InstanceServiceInterface
	panelService    PanelServiceInterface
}

func NewAdmin(instanceService InstanceServiceInterface, panelService PanelServiceInterface) *Admin {
	return &Admin{
		instanceService: instanceService,
		panelService:    panelService,
	}
}

func (a *Admin) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/templates/resolve", ginx.Adapt5(a.ResolveTemplate))
	router.POST("/panel/describe", ginx.Adapt5(a.DescribePanel))
}

func (a *Admin) ResolveTemplate(ctx *gin.Context, req *entity.ResolveTemplateRequest) (*entity.ResolvedSpec, error) {
	return a.instanceService.ResolveSpec(ctx, req.Name)
}

func (a *Admin) DescribePanel(ctx *gin.Context, _ *entity.DescribePanelRequest) (*entity.PanelOverview, error) {
	return a.panelService.DescribePanel(ctx)
}
