package pterodactyl

// item 面板返回的单个对象包装 {"object": "...", "attributes": {...}}
type item[T any] struct {
	Object     string `json:"object"`
	Attributes T      `json:"attributes"`
}

// list 面板返回的列表包装
type list[T any] struct {
	Object string    `json:"object"`
	Data   []item[T] `json:"data"`
	Meta   struct {
		Pagination Pagination `json:"pagination"`
	} `json:"meta"`
}

// Pagination 分页信息
type Pagination struct {
	Total       int `json:"total"`
	Count       int `json:"count"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// User 面板用户
type User struct {
	ID         int     `json:"id"`
	ExternalID *string `json:"external_id"`
	UUID       string  `json:"uuid"`
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Language   string  `json:"language"`
	RootAdmin  bool    `json:"root_admin"`
	TwoFactor  bool    `json:"2fa"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password,omitempty"`
}

// UpdateUserRequest 更新用户请求
// 面板要求 PATCH 时携带完整的 email、username 和姓名
type UpdateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password,omitempty"`
}

// Limits 服务器资源限制
type Limits struct {
	Memory      int     `json:"memory"` // MB
	Swap        int     `json:"swap"`   // MB
	Disk        int     `json:"disk"`   // MB
	IO          int     `json:"io"`
	CPU         int     `json:"cpu"` // 100 = 1 核
	Threads     *string `json:"threads,omitempty"`
	OOMDisabled bool    `json:"oom_disabled,omitempty"`
}

// FeatureLimits 服务器功能限制
type FeatureLimits struct {
	Databases   int `json:"databases"`
	Allocations int `json:"allocations"`
	Backups     int `json:"backups"`
}

// Container 服务器容器配置
type Container struct {
	StartupCommand string         `json:"startup_command"`
	Image          string         `json:"image"`
	Environment    map[string]any `json:"environment"`
}

// Server 面板服务器
type Server struct {
	ID            int                  `json:"id"`
	ExternalID    *string              `json:"external_id"`
	UUID          string               `json:"uuid"`
	Identifier    string               `json:"identifier"`
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	Status        *string              `json:"status"`
	Suspended     bool                 `json:"suspended"`
	Limits        Limits               `json:"limits"`
	FeatureLimits FeatureLimits        `json:"feature_limits"`
	User          int                  `json:"user"`
	Node          int                  `json:"node"`
	Allocation    int                  `json:"allocation"`
	Nest          int                  `json:"nest"`
	Egg           int                  `json:"egg"`
	Container     Container            `json:"container"`
	CreatedAt     string               `json:"created_at"`
	UpdatedAt     string               `json:"updated_at"`
	Relationships *ServerRelationships `json:"relationships,omitempty"`
}

// ServerRelationships include=allocations 时返回的关联数据
type ServerRelationships struct {
	Allocations *list[Allocation] `json:"allocations,omitempty"`
}

// DefaultAllocation 返回服务器的主 allocation（需要 include=allocations）
func (s *Server) DefaultAllocation() *Allocation {
	if s.Relationships == nil || s.Relationships.Allocations == nil {
		return nil
	}
	for i := range s.Relationships.Allocations.Data {
		alloc := &s.Relationships.Allocations.Data[i].Attributes
		if alloc.ID == s.Allocation {
			return alloc
		}
	}
	return nil
}

// AllocationRequest 创建服务器时指定的 allocation
type AllocationRequest struct {
	Default    int   `json:"default"`
	Additional []int `json:"additional,omitempty"`
}

// CreateServerRequest 创建服务器请求
type CreateServerRequest struct {
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	User              int               `json:"user"`
	Egg               int               `json:"egg"`
	DockerImage       string            `json:"docker_image"`
	Startup           string            `json:"startup"`
	Environment       map[string]string `json:"environment"`
	Limits            Limits            `json:"limits"`
	FeatureLimits     FeatureLimits     `json:"feature_limits"`
	Allocation        AllocationRequest `json:"allocation"`
	StartOnCompletion bool              `json:"start_on_completion"`
	SkipScripts       bool              `json:"skip_scripts"`
	OOMDisabled       bool              `json:"oom_disabled"`
}

// Nest 面板 nest（应用分类）
type Nest struct {
	ID          int    `json:"id"`
	UUID        string `json:"uuid"`
	Author      string `json:"author"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Egg 面板 egg（应用运行时定义）
type Egg struct {
	ID            int               `json:"id"`
	UUID          string            `json:"uuid"`
	Name          string            `json:"name"`
	Nest          int               `json:"nest"`
	Author        string            `json:"author"`
	Description   string            `json:"description"`
	DockerImage   string            `json:"docker_image"`
	DockerImages  map[string]string `json:"docker_images,omitempty"`
	Startup       string            `json:"startup"`
	Relationships *EggRelationships `json:"relationships,omitempty"`
}

// EggRelationships include=variables 时返回的关联数据
type EggRelationships struct {
	Variables *list[EggVariable] `json:"variables,omitempty"`
}

// Variables 返回 egg 的环境变量定义（需要 include=variables）
func (e *Egg) Variables() []EggVariable {
	if e.Relationships == nil || e.Relationships.Variables == nil {
		return nil
	}
	vars := make([]EggVariable, 0, len(e.Relationships.Variables.Data))
	for _, v := range e.Relationships.Variables.Data {
		vars = append(vars, v.Attributes)
	}
	return vars
}

// Image 返回 egg 的运行时镜像
// 新版本面板只返回 docker_images，取其中字典序最小的一个保证结果稳定
func (e *Egg) Image() string {
	if e.DockerImage != "" {
		return e.DockerImage
	}
	image := ""
	name := ""
	for k, v := range e.DockerImages {
		if name == "" || k < name {
			name, image = k, v
		}
	}
	return image
}

// EggVariable egg 的环境变量定义
type EggVariable struct {
	ID           int    `json:"id"`
	EggID        int    `json:"egg_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	EnvVariable  string `json:"env_variable"`
	DefaultValue string `json:"default_value"`
	UserViewable bool   `json:"user_viewable"`
	UserEditable bool   `json:"user_editable"`
	Rules        string `json:"rules"`
	Required     bool   `json:"required,omitempty"`
}

// Node 面板节点
type Node struct {
	ID                 int    `json:"id"`
	UUID               string `json:"uuid"`
	Public             bool   `json:"public"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	LocationID         int    `json:"location_id"`
	FQDN               string `json:"fqdn"`
	Scheme             string `json:"scheme"`
	MaintenanceMode    bool   `json:"maintenance_mode"`
	Memory             int    `json:"memory"`
	MemoryOverallocate int    `json:"memory_overallocate"`
	Disk               int    `json:"disk"`
	DiskOverallocate   int    `json:"disk_overallocate"`
}

// Allocation 节点上的网络端点（IP + 端口）
type Allocation struct {
	ID       int     `json:"id"`
	IP       string  `json:"ip"`
	Alias    *string `json:"alias"`
	Port     int     `json:"port"`
	Notes    *string `json:"notes"`
	Assigned bool    `json:"assigned"`
}

// Host 优先返回 alias，没有 alias 时返回 IP
func (a *Allocation) Host() string {
	if a.Alias != nil && *a.Alias != "" {
		return *a.Alias
	}
	return a.IP
}

// SetAllocations 填充服务器的 allocations 关联数据，等价于 include=allocations 的返回
func (s *Server) SetAllocations(allocs ...Allocation) {
	l := &list[Allocation]{Object: "list"}
	for _, a := range allocs {
		l.Data = append(l.Data, item[Allocation]{Object: "allocation", Attributes: a})
	}
	s.Relationships = &ServerRelationships{Allocations: l}
}

// SetVariables 填充 egg 的 variables 关联数据，等价于 include=variables 的返回
func (e *Egg) SetVariables(vars ...EggVariable) {
	l := &list[EggVariable]{Object: "list"}
	for _, v := range vars {
		l.Data = append(l.Data, item[EggVariable]{Object: "egg_variable", Attributes: v})
	}
	e.Relationships = &EggRelationships{Variables: l}
}
