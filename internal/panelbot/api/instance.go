package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/pkg/ginx"
)

// InstanceServiceInterface 定义实例服务的接口
type InstanceServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateInstanceRequest) (*entity.Instance, error)
	List(ctx context.Context, externalUserID string) ([]entity.Instance, error)
	Sync(ctx context.Context, externalUserID string) (bool, error)
	Instances(externalUserID string) []int
	Quota(ctx context.Context, externalUserID string) (*entity.QuotaStatus, error)
	ResolveSpec(ctx context.Context, templateName string) (*entity.ResolvedSpec, error)
}

// ConfirmationServiceInterface 定义删除确认服务的接口
type ConfirmationServiceInterface interface {
	RequestDeletion(ctx context.Context, externalUserID string, instanceID int) (*entity.DeleteConfirmation, error)
	Confirm(ctx context.Context, externalUserID, confirmationID string) (*entity.DeleteConfirmation, error)
	Cancel(ctx context.Context, externalUserID, confirmationID string) (*entity.DeleteConfirmation, error)
}

type Instance struct {
	instanceService     InstanceServiceInterface
	confirmationService ConfirmationServiceInterface
}

func NewInstance(instanceService InstanceServiceInterface, confirmationService ConfirmationServiceInterface) *Instance {
	return &Instance{
		instanceService:     instanceService,
		confirmationService: confirmationService,
	}
}

func (i *Instance) RegisterRoutes(router *gin.RouterGroup) {
	instanceRouter := router.Group("/instances")
	instanceRouter.POST("/create", ginx.Adapt5(i.CreateInstance))
	instanceRouter.POST("/describe", ginx.Adapt5(i.DescribeInstances))
	instanceRouter.POST("/sync", ginx.Adapt5(i.SyncInstances))
	instanceRouter.POST("/quota", ginx.Adapt5(i.DescribeQuota))
	instanceRouter.POST("/delete/request", ginx.Adapt5(i.RequestDeletion))
	instanceRouter.POST("/delete/confirm", ginx.Adapt5(i.ConfirmDeletion))
	instanceRouter.POST("/delete/cancel", ginx.Adapt5(i.CancelDeletion))
}

func (i *Instance) CreateInstance(ctx *gin.Context, req *entity.CreateInstanceRequest) (*entity.CreateInstanceResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Interface("request", req).
		Msg("CreateInstance called")

	instance, err := i.instanceService.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("instance_id", instance.ID).
		Msg("Instance created successfully")

	return &entity.CreateInstanceResponse{Instance: instance}, nil
}

func (i *Instance) DescribeInstances(ctx *gin.Context, req *entity.DescribeInstancesRequest) (*entity.DescribeInstancesResponse, error) {
	instances, err := i.instanceService.List(ctx, req.ExternalUserID)
	if err != nil {
		return nil, err
	}
	return &entity.DescribeInstancesResponse{Instances: instances}, nil
}

func (i *Instance) SyncInstances(ctx *gin.Context, req *entity.SyncInstancesRequest) (*entity.SyncInstancesResponse, error) {
	linked, err := i.instanceService.Sync(ctx, req.ExternalUserID)
	if err != nil {
		return nil, err
	}
	resp := &entity.SyncInstancesResponse{Linked: linked, InstanceIDs: []int{}}
	if linked {
		if ids := i.instanceService.Instances(req.ExternalUserID); ids != nil {
			resp.InstanceIDs = ids
		}
	}
	return resp, nil
}

func (i *Instance) DescribeQuota(ctx *gin.Context, req *entity.QuotaRequest) (*entity.QuotaStatus, error) {
	return i.instanceService.Quota(ctx, req.ExternalUserID)
}

func (i *Instance) RequestDeletion(ctx *gin.Context, req *entity.RequestDeletionRequest) (*entity.DeleteConfirmationResponse, error) {
	c, err := i.confirmationService.RequestDeletion(ctx, req.ExternalUserID, req.InstanceID)
	if err != nil {
		return nil, err
	}
	return &entity.DeleteConfirmationResponse{Confirmation: c}, nil
}

func (i *Instance) ConfirmDeletion(ctx *gin.Context, req *entity.ResolveDeletionRequest) (*entity.DeleteConfirmationResponse, error) {
	c, err := i.confirmationService.Confirm(ctx, req.ExternalUserID, req.ConfirmationID)
	if err != nil {
		return nil, err
	}
	return &entity.DeleteConfirmationResponse{Confirmation: c}, nil
}

func (i *Instance) CancelDeletion(ctx *gin.Context, req *entity.ResolveDeletionRequest) (*entity.DeleteConfirmationResponse, error) {
	c, err := i.confirmationService.Cancel(ctx, req.ExternalUserID, req.ConfirmationID)
	if err != nil {
		return nil, err
	}
	return &entity.DeleteConfirmationResponse{Confirmation: c}, nil
}
