package api

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
)

// MockLinkService 是 LinkService 的 mock 实现
type MockLinkService struct {
	mock.Mock
}

func (m *MockLinkService) RequestLink(ctx context.Context, externalUserID string) (*entity.AuthCode, error) {
	args := m.Called(ctx, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthCode), args.Error(1)
}

func (m *MockLinkService) CodeTTL() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

func (m *MockLinkService) RedeemLink(ctx context.Context, req *entity.RedeemLinkRequest) (*entity.LinkResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LinkResult), args.Error(1)
}

func (m *MockLinkService) WaitForLink(ctx context.Context, externalUserID string) (bool, error) {
	args := m.Called(ctx, externalUserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkService) DescribeAccount(ctx context.Context, externalUserID string) (*entity.DescribeLinkResponse, error) {
	args := m.Called(ctx, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DescribeLinkResponse), args.Error(1)
}

func (m *MockLinkService) ResetPassword(ctx context.Context, externalUserID string) (*entity.ResetPasswordResponse, error) {
	args := m.Called(ctx, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ResetPasswordResponse), args.Error(1)
}

// MockTemplateService 是 TemplateCatalog 的 mock 实现
type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) DescribeTemplates(ctx context.Context, req *entity.DescribeTemplatesRequest) (*entity.DescribeTemplatesResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DescribeTemplatesResponse), args.Error(1)
}

func (m *MockTemplateService) SearchTemplates(ctx context.Context, req *entity.SearchTemplatesRequest) (*entity.DescribeTemplatesResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DescribeTemplatesResponse), args.Error(1)
}

// MockInstanceService 是 InstanceService 的 mock 实现
type MockInstanceService struct {
	mock.Mock
}

func (m *MockInstanceService) Create(ctx context.Context, req *entity.CreateInstanceRequest) (*entity.Instance, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Instance), args.Error(1)
}

func (m *MockInstanceService) List(ctx context.Context, externalUserID string) ([]entity.Instance, error) {
	args := m.Called(ctx, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Instance), args.Error(1)
}

func (m *MockInstanceService) Sync(ctx context.Context, externalUserID string) (bool, error) {
	args := m.Called(ctx, externalUserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstanceService) Instances(externalUserID string) []int {
	args := m.Called(externalUserID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]int)
}

func (m *MockInstanceService) Quota(ctx context.Context, externalUserID string) (*entity.QuotaStatus, error) {
	args := m.Called(ctx, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuotaStatus), args.Error(1)
}

func (m *MockInstanceService) ResolveSpec(ctx context.Context, templateName string) (*entity.ResolvedSpec, error) {
	args := m.Called(ctx, templateName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ResolvedSpec), args.Error(1)
}

// MockConfirmationService 是 ConfirmationService 的 mock 实现
type MockConfirmationService struct {
	mock.Mock
}

func (m *MockConfirmationService) RequestDeletion(ctx context.Context, externalUserID string, instanceID int) (*entity.DeleteConfirmation, error) {
	args := m.Called(ctx, externalUserID, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DeleteConfirmation), args.Error(1)
}

func (m *MockConfirmationService) Confirm(ctx context.Context, externalUserID, confirmationID string) (*entity.DeleteConfirmation, error) {
	args := m.Called(ctx, externalUserID, confirmationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DeleteConfirmation), args.Error(1)
}

func (m *MockConfirmationService) Cancel(ctx context.Context, externalUserID, confirmationID string) (*entity.DeleteConfirmation, error) {
	args := m.Called(ctx, externalUserID, confirmationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DeleteConfirmation), args.Error(1)
}

// MockPanelService 是 PanelService 的 mock 实现
type MockPanelService struct {
	mock.Mock
}

func (m *MockPanelService) DescribePanel(ctx context.Context) (*entity.PanelOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PanelOverview), args.Error(1)
}
