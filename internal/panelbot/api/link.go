package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/pkg/ginx"
)

// LinkServiceInterface 定义绑定服务的接口
type LinkServiceInterface interface {
	RequestLink(ctx context.Context, externalUserID string) (*entity.AuthCode, error)
	CodeTTL() time.Duration
	RedeemLink(ctx context.Context, req *entity.RedeemLinkRequest) (*entity.LinkResult, error)
	WaitForLink(ctx context.Context, externalUserID string) (bool, error)
	DescribeAccount(ctx context.Context, externalUserID string) (*entity.DescribeLinkResponse, error)
	ResetPassword(ctx context.Context, externalUserID string) (*entity.ResetPasswordResponse, error)
}

type Link struct {
	linkService LinkServiceInterface
	waitTimeout time.Duration
	linkURL     func(code string) string
}

func NewLink(linkService LinkServiceInterface, waitTimeout time.Duration, linkURL func(code string) string) *Link {
	if waitTimeout <= 0 {
		waitTimeout = 30 * time.Second
	}
	return &Link{
		linkService: linkService,
		waitTimeout: waitTimeout,
		linkURL:     linkURL,
	}
}

func (l *Link) RegisterRoutes(router *gin.RouterGroup) {
	linkRouter := router.Group("/links")
	linkRouter.POST("/request", ginx.Adapt5(l.RequestLink))
	linkRouter.POST("/redeem", ginx.Adapt5(l.RedeemLink))
	linkRouter.POST("/describe", ginx.Adapt5(l.DescribeLink))
	linkRouter.POST("/wait", ginx.Adapt5(l.WaitLink))
	linkRouter.POST("/reset-password", ginx.Adapt5(l.ResetPassword))
}

func (l *Link) RequestLink(ctx *gin.Context, req *entity.RequestLinkRequest) (*entity.RequestLinkResponse, error) {
	code, err := l.linkService.RequestLink(ctx, req.ExternalUserID)
	if err != nil {
		return nil, err
	}

	resp := &entity.RequestLinkResponse{
		Code:      code.Code,
		ExpiresAt: code.IssuedAt.Add(l.linkService.CodeTTL()),
	}
	if l.linkURL != nil {
		resp.LinkURL = l.linkURL(code.Code)
	}
	return resp, nil
}

func (l *Link) RedeemLink(ctx *gin.Context, req *entity.RedeemLinkRequest) (*entity.LinkResult, error) {
	return l.linkService.RedeemLink(ctx, req)
}

func (l *Link) DescribeLink(ctx *gin.Context, req *entity.DescribeLinkRequest) (*entity.DescribeLinkResponse, error) {
	return l.linkService.DescribeAccount(ctx, req.ExternalUserID)
}

// WaitLink 阻塞到用户完成绑定或超时，超时返回 linked=false
func (l *Link) WaitLink(ctx *gin.Context, req *entity.WaitLinkRequest) (*entity.DescribeLinkResponse, error) {
	timeout := l.waitTimeout
	if req.TimeoutSeconds > 0 {
		timeout = min(timeout, time.Duration(req.TimeoutSeconds)*time.Second)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	linked, err := l.linkService.WaitForLink(waitCtx, req.ExternalUserID)
	if err != nil {
		return nil, err
	}
	if !linked {
		zerolog.Ctx(ctx).Debug().Str("external_user_id", req.ExternalUserID).Msg("Wait for link timed out")
		return &entity.DescribeLinkResponse{Linked: false}, nil
	}
	return l.linkService.DescribeAccount(ctx, req.ExternalUserID)
}

func (l *Link) ResetPassword(ctx *gin.Context, req *entity.ResetPasswordRequest) (*entity.ResetPasswordResponse, error) {
	return l.linkService.ResetPassword(ctx, req.ExternalUserID)
}
