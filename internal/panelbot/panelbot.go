// Package panelbot 提供 panelbot 服务的主入口和初始化逻辑
package panelbot

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jimmicro/grace"
	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/internal/panelbot/api"
	"github.com/jimyag/panelbot/internal/panelbot/config"
	"github.com/jimyag/panelbot/internal/panelbot/oauth"
	"github.com/jimyag/panelbot/internal/panelbot/repository"
	"github.com/jimyag/panelbot/internal/panelbot/service"
	"github.com/jimyag/panelbot/pkg/pterodactyl"
)

// Services 核心服务，CLI 子命令也直接使用
type Services struct {
	Panel        pterodactyl.PanelClient
	Store        repository.Store
	State        *service.State
	Links        *service.LinkService
	Templates    *service.TemplateCatalog
	Placement    *service.PlacementService
	Instances    *service.InstanceService
	Confirmation *service.ConfirmationService
	Diagnostics  *service.PanelService
}

// Close 关闭本地存储
func (s *Services) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// NewServices 按配置创建面板客户端、本地存储和所有服务
func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	logger := zerolog.Ctx(ctx)

	// 1. 创建面板客户端
	panel, err := pterodactyl.New(&pterodactyl.Config{
		BaseURL: cfg.Panel.URL,
		APIKey:  cfg.Panel.APIKey,
		Timeout: cfg.Panel.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create panel client: %w", err)
	}

	// 2. 加载模板
	templates, err := config.LoadTemplates(cfg.TemplatesFile)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	// 3. 打开本地存储并加载状态
	store, err := repository.New(cfg.Store.Backend, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	state := service.NewState(ctx, store)
	logger.Info().
		Str("backend", cfg.Store.Backend).
		Str("data_dir", cfg.DataDir).
		Int("templates", len(templates)).
		Msg("State loaded")

	// 4. 创建服务
	catalog := service.NewTemplateCatalog(templates)
	placement := service.NewPlacementService(panel)
	instances := service.NewInstanceService(state, panel, placement, catalog, cfg.Quota.MaxInstancesPerUser)

	return &Services{
		Panel:        panel,
		Store:        store,
		State:        state,
		Links:        service.NewLinkService(state, panel, cfg.Link.CodeTTL),
		Templates:    catalog,
		Placement:    placement,
		Instances:    instances,
		Confirmation: service.NewConfirmationService(instances, cfg.Delete.ConfirmTimeout),
		Diagnostics:  service.NewPanelService(panel),
	}, nil
}

type Server struct {
	cfg       *config.Config
	api       *api.API
	services  *Services
	logCloser io.Closer

	// Run 和 Shutdown 都会关闭资源，只执行一次
	closeOnce sync.Once
	closeErr  error
}

func New(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, logCloser, err := NewLogger(cfg.Log, nil)
	if err != nil {
		return nil, err
	}
	zerolog.DefaultContextLogger = &logger
	ctx := logger.WithContext(context.Background())

	services, err := NewServices(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := &api.Options{
		Address:     cfg.Address,
		APIKey:      cfg.API.Key,
		AdminKey:    cfg.API.AdminKey,
		WaitTimeout: cfg.Link.WaitTimeout,
	}
	var web []api.RouteRegistrar
	if cfg.OAuth.Enabled() {
		handler, err := oauth.New(cfg.OAuth, services.Links)
		if err != nil {
			return nil, fmt.Errorf("create oauth handler: %w", err)
		}
		opts.LinkURL = handler.LinkURL
		web = append(web, handler)
		logger.Info().Str("redirect_url", cfg.OAuth.RedirectURL).Msg("OAuth linking enabled")
	} else {
		logger.Warn().Msg("OAuth is not configured, links can only be redeemed through the API")
	}
	if cfg.API.Key == "" {
		logger.Warn().Msg("api.key is empty, the bot API accepts unauthenticated requests")
	}

	apiInstance, err := api.New(opts, &api.Services{
		Links:         services.Links,
		Templates:     services.Templates,
		Instances:     services.Instances,
		Confirmations: services.Confirmation,
		Panel:         services.Diagnostics,
	}, web...)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:       cfg,
		api:       apiInstance,
		services:  services,
		logCloser: logCloser,
	}, nil
}

func (s *Server) Run(ctx context.Context) error {
	// 使用 grace.Shepherd 管理服务生命周期
	services := []grace.Grace{
		s.api,
	}

	shepherd := grace.NewShepherd(
		services,
		grace.WithTimeout(30*time.Second),
		grace.WithLogger(&zerologLogger{}),
	)

	shepherd.Start(ctx)
	return s.close()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.api.Shutdown(ctx); err != nil {
		return err
	}
	return s.close()
}

func (s *Server) close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.services.Close()
		if s.logCloser != nil {
			_ = s.logCloser.Close()
		}
	})
	return s.closeErr
}

// Name 实现 grace.Grace 接口
func (s *Server) Name() string {
	return "panelbot"
}

// zerologLogger 实现 grace.Logger 接口
type zerologLogger struct{}

func (l *zerologLogger) Info(msg string, args ...any) {
	logger := zerolog.DefaultContextLogger.Info()
	// 如果有参数，使用 Msgf 格式化消息
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}

func (l *zerologLogger) Error(msg string, args ...any) {
	logger := zerolog.DefaultContextLogger.Error()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}
