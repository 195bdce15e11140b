package entity

// PlacementCandidate 一次创建请求选出的节点和 allocation
type PlacementCandidate struct {
	NodeID       int    `json:"node_id"`
	NodeName     string `json:"node_name"`
	AllocationID int    `json:"allocation_id"`
	IP           string `json:"ip"`
	Alias        string `json:"alias,omitempty"`
	Port         int    `json:"port"`
}
