package pterodactyl

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient 是 PanelClient 的 mock 实现
// 用于测试，不需要真实的面板
type MockClient struct {
	mock.Mock
}

var _ PanelClient = (*MockClient)(nil)

func (m *MockClient) BaseURL() string {
	args := m.Called()
	return args.String(0)
}

// 用户
func (m *MockClient) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockClient) GetUser(ctx context.Context, userID int) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockClient) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockClient) UpdateUser(ctx context.Context, userID int, req *UpdateUserRequest) (*User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

// 服务器
func (m *MockClient) ListServers(ctx context.Context) ([]Server, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Server), args.Error(1)
}

func (m *MockClient) ListServersByOwner(ctx context.Context, userID int) ([]Server, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Server), args.Error(1)
}

func (m *MockClient) GetServer(ctx context.Context, serverID int) (*Server, error) {
	args := m.Called(ctx, serverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Server), args.Error(1)
}

func (m *MockClient) CreateServer(ctx context.Context, req *CreateServerRequest) (*Server, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Server), args.Error(1)
}

func (m *MockClient) DeleteServer(ctx context.Context, serverID int) error {
	args := m.Called(ctx, serverID)
	return args.Error(0)
}

// Nest / Egg
func (m *MockClient) ListNests(ctx context.Context) ([]Nest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Nest), args.Error(1)
}

func (m *MockClient) ListEggs(ctx context.Context, nestID int) ([]Egg, error) {
	args := m.Called(ctx, nestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Egg), args.Error(1)
}

func (m *MockClient) GetEgg(ctx context.Context, nestID, eggID int) (*Egg, error) {
	args := m.Called(ctx, nestID, eggID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Egg), args.Error(1)
}

// 节点与 allocation
func (m *MockClient) ListNodes(ctx context.Context) ([]Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Node), args.Error(1)
}

func (m *MockClient) ListAllocations(ctx context.Context, nodeID int) ([]Allocation, error) {
	args := m.Called(ctx, nodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Allocation), args.Error(1)
}
