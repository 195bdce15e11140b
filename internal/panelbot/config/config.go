package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 所有环境变量的前缀，例如 panel.api_key 对应 PANELBOT_PANEL_API_KEY
const EnvPrefix = "PANELBOT"

type Config struct {
	// Panel 面板 Application API 配置
	Panel PanelConfig `mapstructure:"panel"`

	// DataDir 是数据目录
	// 用于存储绑定关系、绑定码和实例归属
	// 可以通过环境变量 PANELBOT_DATA_DIR 配置
	// 默认：~/.local/share/panelbot
	DataDir string `mapstructure:"data_dir"`

	// Store 本地存储配置
	Store StoreConfig `mapstructure:"store"`

	// Address HTTP API 监听地址
	Address string `mapstructure:"address"`

	API    APIConfig    `mapstructure:"api"`
	Quota  QuotaConfig  `mapstructure:"quota"`
	Link   LinkConfig   `mapstructure:"link"`
	Delete DeleteConfig `mapstructure:"delete"`
	OAuth  OAuthConfig  `mapstructure:"oauth"`
	Log    LogConfig    `mapstructure:"log"`

	// TemplatesFile 模板文件路径，为空时使用内置模板
	TemplatesFile string `mapstructure:"templates_file"`
}

type PanelConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StoreConfig struct {
	// Backend 存储后端：json 或 sqlite
	Backend string `mapstructure:"backend"`
}

type APIConfig struct {
	// Key 聊天机器人调用 API 时使用的 Bearer Token，为空时不校验
	Key string `mapstructure:"key"`
	// AdminKey 调用 /api/admin/* 时使用的 Bearer Token，为空时禁用管理接口
	AdminKey string `mapstructure:"admin_key"`
}

type QuotaConfig struct {
	MaxInstancesPerUser int `mapstructure:"max_instances_per_user"`
}

type LinkConfig struct {
	CodeTTL     time.Duration `mapstructure:"code_ttl"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
}

type DeleteConfig struct {
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
}

// OAuthConfig 聊天平台 OAuth 配置，默认指向 Discord
type OAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	AuthURL      string `mapstructure:"auth_url"`
	TokenURL     string `mapstructure:"token_url"`
	UserInfoURL  string `mapstructure:"userinfo_url"`
	// StateSecret 签名 OAuth state 的密钥
	StateSecret string `mapstructure:"state_secret"`
	// PublicBaseURL 对外访问地址，用于拼接发给用户的绑定链接
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// Enabled 是否配置了 OAuth
func (c OAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// New 从环境变量和可选的配置文件加载配置
// 配置文件路径通过 PANELBOT_CONFIG 指定
func New() (*Config, error) {
	return Load(os.Getenv(EnvPrefix + "_CONFIG"))
}

// Load 加载配置，file 为空时只读取环境变量和默认值
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Panel.URL = strings.TrimRight(cfg.Panel.URL, "/")
	cfg.Store.Backend = strings.ToLower(cfg.Store.Backend)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// 面板
	v.SetDefault("panel.url", "")
	v.SetDefault("panel.api_key", "")
	v.SetDefault("panel.timeout", 15*time.Second)

	// 存储
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("store.backend", "json")

	// API
	v.SetDefault("address", "0.0.0.0:7788")
	v.SetDefault("api.key", "")
	v.SetDefault("api.admin_key", "")

	// 业务
	v.SetDefault("quota.max_instances_per_user", 2)
	v.SetDefault("link.code_ttl", 10*time.Minute)
	v.SetDefault("link.wait_timeout", 30*time.Second)
	v.SetDefault("delete.confirm_timeout", 60*time.Second)
	v.SetDefault("templates_file", "")

	// OAuth，默认 Discord
	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.redirect_url", "http://localhost:7788/oauth/callback")
	v.SetDefault("oauth.auth_url", "https://discord.com/oauth2/authorize")
	v.SetDefault("oauth.token_url", "https://discord.com/api/oauth2/token")
	v.SetDefault("oauth.userinfo_url", "https://discord.com/api/users/@me")
	v.SetDefault("oauth.state_secret", "")
	v.SetDefault("oauth.public_base_url", "http://localhost:7788")

	// 日志
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
}

// defaultDataDir 获取默认数据目录
func defaultDataDir() string {
	// 1. 使用用户主目录下的 .local/share/panelbot
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "panelbot")
	}

	// 2. 如果无法获取主目录，使用当前目录下的 data
	return filepath.Join(".", "data")
}

// Validate 检查启动服务所必需的配置
func (c *Config) Validate() error {
	var errs []error
	if c.Panel.URL == "" {
		errs = append(errs, errors.New("panel.url is required (PANELBOT_PANEL_URL)"))
	}
	if c.Panel.APIKey == "" {
		errs = append(errs, errors.New("panel.api_key is required (PANELBOT_PANEL_API_KEY)"))
	}
	switch c.Store.Backend {
	case "json", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q, want json or sqlite", c.Store.Backend))
	}
	if c.Quota.MaxInstancesPerUser < 0 {
		errs = append(errs, errors.New("quota.max_instances_per_user must not be negative"))
	}
	if c.OAuth.Enabled() && c.OAuth.StateSecret == "" {
		errs = append(errs, errors.New("oauth.state_secret is required when oauth is enabled"))
	}
	return errors.Join(errs...)
}
