package entity

// CreationState 创建请求的状态
type CreationState string

const (
	CreationStateRequested         CreationState = "Requested"
	CreationStatePlacementSelected CreationState = "PlacementSelected"
	CreationStateSpecResolved      CreationState = "SpecResolved"
	CreationStateSubmitted         CreationState = "Submitted"
	CreationStateSucceeded         CreationState = "Succeeded"
	CreationStateFailed            CreationState = "Failed"
)

// InstanceLimits 实例资源限制
type InstanceLimits struct {
	Memory int `json:"memory"` // MB
	Swap   int `json:"swap"`   // MB
	Disk   int `json:"disk"`   // MB
	IO     int `json:"io"`
	CPU    int `json:"cpu"` // 100 = 1 核
}

// Instance 面板上的一个实例
type Instance struct {
	ID          int            `json:"id"`
	UUID        string         `json:"uuid"`
	Identifier  string         `json:"identifier"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Suspended   bool           `json:"suspended"`
	Limits      InstanceLimits `json:"limits"`
	NodeID      int            `json:"node_id"`
	EggID       int            `json:"egg_id"`
	NestID      int            `json:"nest_id"`
	PanelUserID int            `json:"panel_user_id"`
	// Address 连接地址，host:port
	Address  string `json:"address,omitempty"`
	PanelURL string `json:"panel_url"`
	// State 只在创建响应中返回
	State CreationState `json:"state,omitempty"`
}

// CreateInstanceRequest 创建实例请求
type CreateInstanceRequest struct {
	ExternalUserID string `json:"external_user_id" binding:"required"`
	TemplateName   string `json:"template" binding:"required"`
	Name           string `json:"name"`
	// DisplayName 聊天账号的显示名，用于生成默认实例名
	DisplayName string `json:"display_name"`
}

// CreateInstanceResponse 创建实例响应
type CreateInstanceResponse struct {
	Instance *Instance `json:"instance"`
}

// DescribeInstancesRequest 列出实例请求
type DescribeInstancesRequest struct {
	ExternalUserID string `json:"external_user_id" binding:"required"`
}

// DescribeInstancesResponse 列出实例响应
type DescribeInstancesResponse struct {
	Instances []Instance `json:"instances"`
}

// SyncInstancesRequest 同步实例归属请求
type SyncInstancesRequest struct {
	ExternalUserID string `json:"external_user_id" binding:"required"`
}

// SyncInstancesResponse 同步实例归属响应
type SyncInstancesResponse struct {
	Linked      bool  `json:"linked"`
	InstanceIDs []int `json:"instance_ids"`
}

// QuotaRequest 查询配额请求
type QuotaRequest struct {
	ExternalUserID string `json:"external_user_id" binding:"required"`
}

// QuotaStatus 用户配额
type QuotaStatus struct {
	Used      int  `json:"used"`
	Max       int  `json:"max"`
	CanCreate bool `json:"can_create"`
}
