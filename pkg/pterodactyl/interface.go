package pterodactyl

import "context"

// PanelClient 定义面板客户端接口
// 用于抽象面板 REST API，便于测试和 mock
type PanelClient interface {
	// BaseURL 面板地址，用于拼接用户可访问的链接
	BaseURL() string

	// 用户
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	GetUser(ctx context.Context, userID int) (*User, error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, userID int, req *UpdateUserRequest) (*User, error)

	// 服务器
	ListServers(ctx context.Context) ([]Server, error)
	ListServersByOwner(ctx context.Context, userID int) ([]Server, error)
	GetServer(ctx context.Context, serverID int) (*Server, error)
	CreateServer(ctx context.Context, req *CreateServerRequest) (*Server, error)
	DeleteServer(ctx context.Context, serverID int) error

	// Nest / Egg
	ListNests(ctx context.Context) ([]Nest, error)
	ListEggs(ctx context.Context, nestID int) ([]Egg, error)
	GetEgg(ctx context.Context, nestID, eggID int) (*Egg, error)

	// 节点与 allocation
	ListNodes(ctx context.Context) ([]Node, error)
	ListAllocations(ctx context.Context, nodeID int) ([]Allocation, error)
}
