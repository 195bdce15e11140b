package entity

// Template 创建实例时使用的预设
type Template struct {
	Name                 string            `json:"name" yaml:"name"`
	DisplayName          string            `json:"display_name" yaml:"display_name"`
	Description          string            `json:"description" yaml:"description"`
	MemoryMB             int               `json:"memory_mb" yaml:"memory_mb"`
	DiskMB               int               `json:"disk_mb" yaml:"disk_mb"`
	CPUHundredths        int               `json:"cpu" yaml:"cpu"` // 100 = 1 核
	NestID               int               `json:"nest_id" yaml:"nest_id"`
	EggID                int               `json:"egg_id" yaml:"egg_id"`
	EnvironmentOverrides map[string]string `json:"environment_overrides,omitempty" yaml:"environment,omitempty"`
}

// ResolvedSpec 模板解析后的具体创建参数
type ResolvedSpec struct {
	Template    *Template         `json:"template"`
	EggName     string            `json:"egg_name"`
	DockerImage string            `json:"docker_image"`
	Startup     string            `json:"startup"`
	Environment map[string]string `json:"environment"`
	// FallbackVariables 面板没有返回变量定义，使用了内置默认变量
	FallbackVariables bool `json:"fallback_variables"`
}

// DescribeTemplatesRequest 列出模板请求
type DescribeTemplatesRequest struct {
	Names []string `json:"names"` // 为空时返回全部
}

// DescribeTemplatesResponse 列出模板响应
type DescribeTemplatesResponse struct {
	Templates []Template `json:"templates"`
}

// SearchTemplatesRequest 模板搜索请求，用于自动补全
type SearchTemplatesRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// ResolveTemplateRequest 解析模板请求
type ResolveTemplateRequest struct {
	Name string `json:"name" binding:"required"`
}
