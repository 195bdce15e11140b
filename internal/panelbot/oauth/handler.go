package oauth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/jimyag/panelbot/internal/panelbot/config"
	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/pkg/apierror"
)

const (
	// stateTTL 从跳转到授权页到回调的最长时间
	stateTTL = 10 * time.Minute

	nonceCookie    = "panelbot_oauth_nonce"
	verifierCookie = "panelbot_oauth_verifier"
	cookiePath     = "/oauth"
)

// scopes 需要账号 ID 和已验证的邮箱
var scopes = []string{"identify", "email"}

// Linker 使用绑定码完成绑定
type Linker interface {
	RedeemLink(ctx context.Context, req *entity.RedeemLinkRequest) (*entity.LinkResult, error)
}

// Handler OAuth 网页绑定流程
type Handler struct {
	config        *oauth2.Config
	userInfoURL   string
	publicBaseURL string
	secureCookie  bool
	state         *stateSigner
	links         Linker
}

// New 创建 OAuth handler
// 没有配置 state_secret 时使用随机密钥，重启后未完成的授权会失效
func New(cfg config.OAuthConfig, links Linker) (*Handler, error) {
	if !cfg.Enabled() {
		return nil, errors.New("oauth client id and secret are required")
	}

	secret := []byte(cfg.StateSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate state secret: %w", err)
		}
	}

	redirect, err := url.Parse(cfg.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth redirect url: %w", err)
	}

	return &Handler{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL:   cfg.UserInfoURL,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		secureCookie:  redirect.Scheme == "https",
		state: &stateSigner{
			secret: secret,
			ttl:    stateTTL,
			now:    time.Now,
		},
		links: links,
	}, nil
}

// RegisterRoutes 注册 /oauth/start 和 /oauth/callback
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	oauthRouter := router.Group("/oauth")
	oauthRouter.GET("/start", h.Start)
	oauthRouter.GET("/callback", h.Callback)
}

// LinkURL 发给用户的绑定链接
func (h *Handler) LinkURL(code string) string {
	return h.publicBaseURL + "/oauth/start?code=" + url.QueryEscape(code)
}

// Start 签发 state 并跳转到授权页
func (h *Handler) Start(c *gin.Context) {
	logger := zerolog.Ctx(c.Request.Context())

	code := strings.ToUpper(strings.TrimSpace(c.Query("code")))
	if code == "" {
		renderError(c, http.StatusBadRequest, "No link code provided. Please use the link from Discord.")
		return
	}

	state, nonce, err := h.state.Sign(code)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to sign oauth state")
		renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
		return
	}
	verifier := oauth2.GenerateVerifier()

	h.setCookie(c, nonceCookie, nonce, int(stateTTL.Seconds()))
	h.setCookie(c, verifierCookie, verifier, int(stateTTL.Seconds()))

	logger.Info().Str("code", code).Msg("Redirecting to oauth authorization page")
	c.Redirect(http.StatusFound, h.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)))
}

// Callback 处理授权回调，完成绑定并展示结果
func (h *Handler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	logger := zerolog.Ctx(ctx)

	nonce, _ := c.Cookie(nonceCookie)
	verifier, _ := c.Cookie(verifierCookie)
	h.setCookie(c, nonceCookie, "", -1)
	h.setCookie(c, verifierCookie, "", -1)

	if reason := c.Query("error"); reason != "" {
		logger.Info().Str("error", reason).Msg("Authorization denied")
		renderError(c, http.StatusBadRequest, "Authorization was cancelled.")
		return
	}

	claims, err := h.state.Verify(c.Query("state"), nonce)
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid oauth state")
		renderError(c, http.StatusBadRequest, "Session expired or invalid. Please try again from Discord.")
		return
	}

	token, err := h.config.Exchange(ctx, c.Query("code"), oauth2.VerifierOption(verifier))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to exchange oauth code")
		renderError(c, http.StatusBadGateway, "Authentication with Discord failed. Please try again.")
		return
	}

	user, err := fetchUserInfo(ctx, h.config, h.userInfoURL, token)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch oauth user info")
		renderError(c, http.StatusBadGateway, "Authentication with Discord failed. Please try again.")
		return
	}
	if user.Email == "" || !user.Verified {
		renderError(c, http.StatusBadRequest, "A verified email address is required. Please authorize with email access.")
		return
	}

	result, err := h.links.RedeemLink(ctx, &entity.RedeemLinkRequest{
		Code:           claims.Code,
		Email:          user.Email,
		DisplayName:    user.DisplayName(),
		ExternalUserID: user.ID,
	})
	if err != nil {
		logger.Warn().Err(err).Str("external_user_id", user.ID).Msg("Failed to redeem link code")
		status, message := http.StatusInternalServerError, "Failed to link account. Please try again."
		if apiErr, ok := apierror.As(err); ok {
			message = apiErr.Message
			if apiErr.HTTPStatus > 0 {
				status = apiErr.HTTPStatus
			}
		}
		renderError(c, status, message)
		return
	}

	data := &pageData{
		Title:    "Account linked",
		Message:  "Your Discord account has been successfully linked to your panel account!",
		PanelURL: result.PanelURL,
		Email:    user.Email,
		Password: result.Password,
	}
	if result.Account != nil {
		data.Username = result.Account.Username
	}
	if result.NewAccount {
		data.Message = "A new panel account has been created and linked to your Discord account!"
	}
	renderPage(c, http.StatusOK, "success", data)
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, cookiePath, "", h.secureCookie, true)
}
