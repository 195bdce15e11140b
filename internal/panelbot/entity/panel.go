package entity

// PanelEgg 面板 egg 概要
type PanelEgg struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DockerImage string `json:"docker_image"`
}

// PanelNest 面板 nest 及其 egg
type PanelNest struct {
	ID   int        `json:"id"`
	Name string     `json:"name"`
	Eggs []PanelEgg `json:"eggs"`
}

// PanelNode 面板节点及 allocation 使用情况
type PanelNode struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	FQDN             string `json:"fqdn"`
	LocationID       int    `json:"location_id"`
	MaintenanceMode  bool   `json:"maintenance_mode"`
	TotalAllocations int    `json:"total_allocations"`
	FreeAllocations  int    `json:"free_allocations"`
}

// PanelOverview 面板诊断信息，只提供给管理员
type PanelOverview struct {
	URL   string      `json:"url"`
	Nests []PanelNest `json:"nests"`
	Nodes []PanelNode `json:"nodes"`
	// Errors 部分查询失败时的错误描述
	Errors []string `json:"errors,omitempty"`
}

// DescribePanelRequest 面板诊断请求
type DescribePanelRequest struct{}
