package service

import (
	"context"
	"maps"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
)

// egg 没有声明镜像或启动命令时使用的默认值
const (
	defaultDockerImage = "ghcr.io/pterodactyl/yolks:java_17"
	defaultStartup     = "java -Xms128M -Xmx{{SERVER_MEMORY}}M -jar {{SERVER_JARFILE}}"
)

// 面板没有返回 egg 变量时使用的内置默认变量
var (
	pythonFallbackEnvironment = map[string]string{
		"USER_UPLOAD":       "0",
		"AUTO_UPDATE":       "0",
		"PY_FILE":           "main.py",
		"REQUIREMENTS_FILE": "requirements.txt",
		"STARTUP_CMD":       "python",
	}
	minecraftFallbackEnvironment = map[string]string{
		"SERVER_JARFILE":    "server.jar",
		"MINECRAFT_VERSION": "latest",
		"BUILD_NUMBER":      "latest",
		"VANILLA_VERSION":   "latest",
	}
	nodeFallbackEnvironment = map[string]string{
		"USER_UPLOAD":   "0",
		"AUTO_UPDATE":   "0",
		"JS_FILE":       "index.js",
		"NODE_PACKAGES": "",
	}
	genericFallbackEnvironment = map[string]string{
		"USER_UPLOAD": "0",
		"AUTO_UPDATE": "0",
	}
)

// fallbackEnvironment 根据 egg 名称选择内置默认变量
func fallbackEnvironment(eggName string) map[string]string {
	name := strings.ToLower(eggName)
	switch {
	case strings.Contains(name, "python"):
		return maps.Clone(pythonFallbackEnvironment)
	case strings.Contains(name, "minecraft"):
		return maps.Clone(minecraftFallbackEnvironment)
	case strings.Contains(name, "node"), strings.Contains(name, "javascript"):
		return maps.Clone(nodeFallbackEnvironment)
	default:
		return maps.Clone(genericFallbackEnvironment)
	}
}

// ResolveSpec 把模板解析成具体的创建参数
// 镜像、启动命令和变量默认值来自面板的 egg 定义
// egg 没有变量时使用内置默认变量，模板中的变量总是覆盖前两者
func (s *InstanceService) ResolveSpec(ctx context.Context, templateName string) (*entity.ResolvedSpec, error) {
	logger := zerolog.Ctx(ctx)

	tpl, err := s.templates.Get(templateName)
	if err != nil {
		return nil, err
	}

	egg, err := s.panel.GetEgg(ctx, tpl.NestID, tpl.EggID)
	if err != nil {
		logger.Error().Err(err).
			Str("template", tpl.Name).
			Int("nest_id", tpl.NestID).
			Int("egg_id", tpl.EggID).
			Msg("Failed to get egg")
		return nil, err
	}

	spec := &entity.ResolvedSpec{
		Template:    tpl,
		EggName:     egg.Name,
		DockerImage: egg.Image(),
		Startup:     egg.Startup,
	}
	if spec.DockerImage == "" {
		spec.DockerImage = defaultDockerImage
	}
	if spec.Startup == "" {
		spec.Startup = defaultStartup
	}

	vars := egg.Variables()
	if len(vars) == 0 {
		logger.Warn().
			Str("template", tpl.Name).
			Str("egg", egg.Name).
			Msg("Egg has no variables, using built-in defaults")
		spec.Environment = fallbackEnvironment(egg.Name)
		spec.FallbackVariables = true
	} else {
		spec.Environment = make(map[string]string, len(vars))
		for _, v := range vars {
			spec.Environment[v.EnvVariable] = v.DefaultValue
		}
	}

	maps.Copy(spec.Environment, tpl.EnvironmentOverrides)
	return spec, nil
}
