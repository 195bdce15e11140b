package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
)

//go:embed templates.yaml
var defaultTemplates []byte

type templatesFile struct {
	Templates []entity.Template `yaml:"templates"`
}

// LoadTemplates 加载模板，file 为空时使用内置模板
func LoadTemplates(file string) ([]entity.Template, error) {
	data := defaultTemplates
	if file != "" {
		var err error
		data, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read templates file %s: %w", file, err)
		}
	}
	return ParseTemplates(data)
}

// ParseTemplates 解析并校验模板
func ParseTemplates(data []byte) ([]entity.Template, error) {
	var f templatesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if len(f.Templates) == 0 {
		return nil, errors.New("no templates defined")
	}

	seen := make(map[string]struct{}, len(f.Templates))
	for i := range f.Templates {
		t := &f.Templates[i]
		t.Name = strings.ToLower(strings.TrimSpace(t.Name))
		if t.Name == "" {
			return nil, fmt.Errorf("template #%d has no name", i)
		}
		if _, ok := seen[t.Name]; ok {
			return nil, fmt.Errorf("duplicate template %q", t.Name)
		}
		seen[t.Name] = struct{}{}

		if t.DisplayName == "" {
			t.DisplayName = t.Name
		}
		if t.Description == "" {
			t.Description = t.DisplayName + " server"
		}
		if t.MemoryMB <= 0 || t.DiskMB <= 0 || t.CPUHundredths <= 0 {
			return nil, fmt.Errorf("template %q: memory_mb, disk_mb and cpu must be positive", t.Name)
		}
		if t.NestID <= 0 || t.EggID <= 0 {
			return nil, fmt.Errorf("template %q: nest_id and egg_id are required", t.Name)
		}
	}
	return f.Templates, nil
}
