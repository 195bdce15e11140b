package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/pkg/ginx"
	"github.com/jimyag/panelbot/pkg/idgen"
)

// Options HTTP API 配置
type Options struct {
	Address string
	// APIKey 调用 /api 时使用的 Bearer Token，为空时不校验
	APIKey string
	// AdminKey 调用 /api/admin 时使用的 Bearer Token，为空时禁用管理接口
	AdminKey string
	// WaitTimeout /api/links/wait 的最长等待时间
	WaitTimeout time.Duration
	// LinkURL 生成发给用户的绑定链接，为空时不返回链接
	LinkURL func(code string) string
}

// Services API 依赖的服务
type Services struct {
	Links         LinkServiceInterface
	Templates     TemplateServiceInterface
	Instances     InstanceServiceInterface
	Confirmations ConfirmationServiceInterface
	Panel         PanelServiceInterface
}

// RouteRegistrar 在根路由上注册额外的路由，例如 OAuth 页面
type RouteRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

type API struct {
	engine *gin.Engine
	server *http.Server

	link     *Link
	template *Template
	instance *Instance
	admin    *Admin
}

func New(opts *Options, services *Services, web ...RouteRegistrar) (*API, error) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	// handler 直接把 *gin.Context 当作 context.Context 使用，需要回落到请求的 context 取 logger
	engine.ContextWithFallback = true
	engine.Use(
		gin.Recovery(),
		ginx.RequestID(idgen.GenerateRequestID),
		requestLogger(),
	)

	api := &API{
		engine:   engine,
		link:     NewLink(services.Links, opts.WaitTimeout, opts.LinkURL),
		template: NewTemplate(services.Templates),
		instance: NewInstance(services.Instances, services.Confirmations),
		admin:    NewAdmin(services.Instances, services.Panel),
	}

	engine.GET("/healthz", ginx.Adapt2(func(*gin.Context) gin.H {
		return gin.H{"status": "ok"}
	}))

	apiRouter := engine.Group("/api", bearerAuth(opts.APIKey, false))
	api.link.RegisterRoutes(apiRouter)
	api.template.RegisterRoutes(apiRouter)
	api.instance.RegisterRoutes(apiRouter)

	adminRouter := engine.Group("/api/admin", bearerAuth(opts.AdminKey, true))
	api.admin.RegisterRoutes(adminRouter)

	for _, w := range web {
		w.RegisterRoutes(&engine.RouterGroup)
	}

	api.server = &http.Server{
		Addr:              opts.Address,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return api, nil
}

// Handler 返回 HTTP handler，用于测试
func (a *API) Handler() http.Handler {
	return a.engine
}

func (a *API) Run(ctx context.Context) error {
	// 请求 context 继承启动时的 logger
	a.server.BaseContext = func(_ net.Listener) context.Context {
		return zerolog.Ctx(ctx).WithContext(context.Background())
	}
	zerolog.Ctx(ctx).Info().Str("address", a.server.Addr).Msg("API server listening")
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Name 实现 grace.Grace 接口
func (a *API) Name() string {
	return "API Server"
}
