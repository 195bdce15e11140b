package service

import (
	"context"
	"sort"
	"strings"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/pkg/apierror"
)

// TemplateCatalog 模板目录，启动时加载，之后只读
type TemplateCatalog struct {
	templates map[string]entity.Template
	names     []string
}

// NewTemplateCatalog 创建模板目录，模板名不区分大小写
func NewTemplateCatalog(templates []entity.Template) *TemplateCatalog {
	c := &TemplateCatalog{templates: make(map[string]entity.Template, len(templates))}
	for _, t := range templates {
		name := strings.ToLower(t.Name)
		t.Name = name
		if _, ok := c.templates[name]; !ok {
			c.names = append(c.names, name)
		}
		c.templates[name] = t
	}
	sort.Strings(c.names)
	return c
}

// List 按名称排序返回所有模板
func (c *TemplateCatalog) List() []entity.Template {
	out := make([]entity.Template, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.clone(name))
	}
	return out
}

// Get 获取模板，不存在时返回 TemplateNotFound
func (c *TemplateCatalog) Get(name string) (*entity.Template, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := c.templates[name]; !ok {
		return nil, apierror.WrapError(apierror.ErrTemplateNotFound,
			"Template '"+name+"' does not exist.", nil)
	}
	t := c.clone(name)
	return &t, nil
}

// Search 按名称或显示名做大小写不敏感的子串匹配，用于自动补全
// limit <= 0 时不限制数量
func (c *TemplateCatalog) Search(query string, limit int) []entity.Template {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []entity.Template
	for _, name := range c.names {
		t := c.templates[name]
		if query == "" ||
			strings.Contains(name, query) ||
			strings.Contains(strings.ToLower(t.DisplayName), query) {
			out = append(out, c.clone(name))
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// DescribeTemplates 列出模板，指定名称时只返回这些模板
func (c *TemplateCatalog) DescribeTemplates(_ context.Context, req *entity.DescribeTemplatesRequest) (*entity.DescribeTemplatesResponse, error) {
	if len(req.Names) == 0 {
		return &entity.DescribeTemplatesResponse{Templates: c.List()}, nil
	}
	out := make([]entity.Template, 0, len(req.Names))
	for _, name := range req.Names {
		t, err := c.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return &entity.DescribeTemplatesResponse{Templates: out}, nil
}

// SearchTemplates 搜索模板
func (c *TemplateCatalog) SearchTemplates(_ context.Context, req *entity.SearchTemplatesRequest) (*entity.DescribeTemplatesResponse, error) {
	return &entity.DescribeTemplatesResponse{Templates: c.Search(req.Query, req.Limit)}, nil
}

// clone 复制模板，调用方修改返回值不会影响目录
func (c *TemplateCatalog) clone(name string) entity.Template {
	t := c.templates[name]
	if t.EnvironmentOverrides != nil {
		env := make(map[string]string, len(t.EnvironmentOverrides))
		for k, v := range t.EnvironmentOverrides {
			env[k] = v
		}
		t.EnvironmentOverrides = env
	}
	return t
}
