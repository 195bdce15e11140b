package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/pkg/apierror"
	"github.com/jimyag/panelbot/pkg/pterodactyl"
)

const (
	// DefaultCodeTTL 绑定码有效期
	DefaultCodeTTL = 10 * time.Minute
	// codeBytes 3 字节十六进制编码后是 6 个字符
	codeBytes = 3
	// passwordBytes 12 字节 base64url 编码后是 16 个字符
	passwordBytes = 12
	// accountLastName 新建面板账号时使用的姓
	accountLastName = "Discord"
)

// LinkService 账号绑定服务
// 把聊天账号绑定到面板账号，首次绑定时在面板上创建账号
type LinkService struct {
	state   *State
	panel   pterodactyl.PanelClient
	codeTTL time.Duration

	now     func() time.Time
	newCode func() (string, error)

	mu sync.Mutex
	// redeeming 正在兑换中的绑定码，其他请求看不到这些码
	redeeming map[string]struct{}
	// waiters 等待绑定完成的请求
	waiters map[string][]chan struct{}
}

// NewLinkService 创建账号绑定服务
func NewLinkService(state *State, panel pterodactyl.PanelClient, codeTTL time.Duration) *LinkService {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	return &LinkService{
		state:     state,
		panel:     panel,
		codeTTL:   codeTTL,
		now:       time.Now,
		newCode:   generateCode,
		redeeming: make(map[string]struct{}),
		waiters:   make(map[string][]chan struct{}),
	}
}

// CodeTTL 绑定码有效期
func (s *LinkService) CodeTTL() time.Duration {
	return s.codeTTL
}

// RequestLink 为聊天账号生成新的绑定码
// 同一个用户可以同时持有多个绑定码，先兑换的生效
func (s *LinkService) RequestLink(ctx context.Context, externalUserID string) (*entity.AuthCode, error) {
	logger := zerolog.Ctx(ctx)

	externalUserID = strings.TrimSpace(externalUserID)
	if externalUserID == "" {
		return nil, apierror.WrapError(apierror.ErrInvalidParameter, "external_user_id is required", nil)
	}

	code, err := s.state.IssueAuthCode(ctx, externalUserID, s.now(), s.codeTTL, s.newCode)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to generate link code", err)
	}

	logger.Info().
		Str("external_user_id", externalUserID).
		Msg("Link code issued")
	return &code, nil
}

// RedeemLink 兑换绑定码
// 按邮箱查找面板账号，找不到时创建新账号，然后写入绑定关系并删除绑定码
// 失败时不修改任何本地状态
func (s *LinkService) RedeemLink(ctx context.Context, req *entity.RedeemLinkRequest) (*entity.LinkResult, error) {
	logger := zerolog.Ctx(ctx)

	code := NormalizeCode(req.Code)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, apierror.WrapError(apierror.ErrInvalidParameter, "An email address is required to link an account", nil)
	}

	authCode, err := s.claim(code)
	if err != nil {
		return nil, err
	}
	defer s.release(code)

	if req.ExternalUserID != "" && req.ExternalUserID != authCode.ExternalUserID {
		logger.Warn().
			Str("code_owner", authCode.ExternalUserID).
			Str("external_user_id", req.ExternalUserID).
			Msg("Link code redeemed by a different identity")
		return nil, apierror.WrapError(apierror.ErrCodeNotFound,
			"This link code was issued to a different account.", nil)
	}

	l := logger.With().Str("external_user_id", authCode.ExternalUserID).Logger()
	logger = &l

	user, err := s.panel.FindUserByEmail(ctx, email)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to look up panel account by email")
		return nil, err
	}

	result := &entity.LinkResult{
		ExternalUserID: authCode.ExternalUserID,
		PanelURL:       s.panel.BaseURL(),
	}

	if user == nil {
		password, err := generatePassword()
		if err != nil {
			return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to generate password", err)
		}
		firstName := strings.TrimSpace(req.DisplayName)
		if firstName == "" {
			firstName = "User"
		}
		user, err = s.panel.CreateUser(ctx, &pterodactyl.CreateUserRequest{
			Username:  panelUsername(req.DisplayName, authCode.ExternalUserID),
			Email:     email,
			FirstName: firstName,
			LastName:  accountLastName,
			Password:  password,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create panel account")
			return nil, err
		}
		result.NewAccount = true
		result.Password = password
		logger.Info().Int("panel_user_id", user.ID).Msg("Panel account created")
	} else {
		logger.Info().Int("panel_user_id", user.ID).Msg("Reusing panel account matched by email")
	}

	s.state.CompleteLink(ctx, code, authCode.ExternalUserID, user.ID)
	s.notify(authCode.ExternalUserID)

	result.Account = toPanelAccount(user)
	logger.Info().Int("panel_user_id", user.ID).Bool("new_account", result.NewAccount).Msg("Account linked")
	return result, nil
}

// claim 标记绑定码正在兑换，绑定码不存在、过期或正在被兑换时返回 CodeNotFound
func (s *LinkService) claim(code string) (entity.AuthCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.redeeming[code]; busy {
		return entity.AuthCode{}, apierror.ErrCodeNotFound
	}
	authCode, ok := s.state.AuthCode(code)
	if !ok || authCode.Expired(s.now(), s.codeTTL) {
		return entity.AuthCode{}, apierror.ErrCodeNotFound
	}
	s.redeeming[code] = struct{}{}
	return authCode, nil
}

func (s *LinkService) release(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.redeeming, code)
}

// IsLinked 聊天账号是否已经绑定
func (s *LinkService) IsLinked(externalUserID string) bool {
	return s.state.IsLinked(externalUserID)
}

// PanelUserIDOf 返回聊天账号绑定的面板账号
func (s *LinkService) PanelUserIDOf(externalUserID string) (int, bool) {
	return s.state.PanelUserIDOf(externalUserID)
}

// WaitForLink 阻塞直到聊天账号完成绑定或 ctx 结束
func (s *LinkService) WaitForLink(ctx context.Context, externalUserID string) (bool, error) {
	s.mu.Lock()
	if s.state.IsLinked(externalUserID) {
		s.mu.Unlock()
		return true, nil
	}
	ch := make(chan struct{})
	s.waiters[externalUserID] = append(s.waiters[externalUserID], ch)
	s.mu.Unlock()

	select {
	case <-ch:
		return true, nil
	case <-ctx.Done():
		s.removeWaiter(externalUserID, ch)
		return s.state.IsLinked(externalUserID), nil
	}
}

func (s *LinkService) notify(externalUserID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.waiters[externalUserID] {
		close(ch)
	}
	delete(s.waiters, externalUserID)
}

func (s *LinkService) removeWaiter(externalUserID string, ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	waiters := s.waiters[externalUserID]
	for i, w := range waiters {
		if w == ch {
			waiters = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(waiters) == 0 {
		delete(s.waiters, externalUserID)
		return
	}
	s.waiters[externalUserID] = waiters
}

// DescribeAccount 查询绑定的面板账号
func (s *LinkService) DescribeAccount(ctx context.Context, externalUserID string) (*entity.DescribeLinkResponse, error) {
	panelUserID, ok := s.state.PanelUserIDOf(externalUserID)
	if !ok {
		return &entity.DescribeLinkResponse{Linked: false}, nil
	}
	user, err := s.panel.GetUser(ctx, panelUserID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int("panel_user_id", panelUserID).Msg("Failed to get panel account")
		return nil, err
	}
	return &entity.DescribeLinkResponse{
		Linked:      true,
		PanelUserID: panelUserID,
		Account:     toPanelAccount(user),
		PanelURL:    s.panel.BaseURL(),
	}, nil
}

// ResetPassword 为绑定的面板账号生成新密码
func (s *LinkService) ResetPassword(ctx context.Context, externalUserID string) (*entity.ResetPasswordResponse, error) {
	logger := zerolog.Ctx(ctx)

	panelUserID, ok := s.state.PanelUserIDOf(externalUserID)
	if !ok {
		return nil, apierror.ErrNotLinked
	}

	user, err := s.panel.GetUser(ctx, panelUserID)
	if err != nil {
		logger.Error().Err(err).Int("panel_user_id", panelUserID).Msg("Failed to get panel account")
		return nil, err
	}

	password, err := generatePassword()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to generate password", err)
	}

	// 面板要求 PATCH 时带上完整的账号信息
	updated, err := s.panel.UpdateUser(ctx, panelUserID, &pterodactyl.UpdateUserRequest{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Password:  password,
	})
	if err != nil {
		logger.Error().Err(err).Int("panel_user_id", panelUserID).Msg("Failed to reset panel password")
		return nil, err
	}

	logger.Info().Str("external_user_id", externalUserID).Int("panel_user_id", panelUserID).Msg("Panel password reset")
	return &entity.ResetPasswordResponse{
		Account:  toPanelAccount(updated),
		Password: password,
		PanelURL: s.panel.BaseURL(),
	}, nil
}

// NormalizeCode 绑定码大小写不敏感，统一转换为大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// generateCode 生成 6 位十六进制绑定码
func generateCode() (string, error) {
	b := make([]byte, codeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// generatePassword 生成随机密码
func generatePassword() (string, error) {
	b := make([]byte, passwordBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// panelUsername 面板用户名：小写显示名_聊天账号 ID，只保留面板允许的字符
func panelUsername(displayName, externalUserID string) string {
	name := sanitize(strings.ToLower(strings.TrimSpace(displayName)), "_-.")
	if name == "" {
		name = "user"
	}
	return fmt.Sprintf("%s_%s", name, sanitize(externalUserID, "_-"))
}

// sanitize 只保留 ASCII 字母、数字和 extra 中的字符
func sanitize(s, extra string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case strings.ContainsRune(extra, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toPanelAccount(u *pterodactyl.User) *entity.PanelAccount {
	if u == nil {
		return nil
	}
	return &entity.PanelAccount{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
