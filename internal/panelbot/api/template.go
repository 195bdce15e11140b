package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/pkg/ginx"
)

// TemplateServiceInterface 定义模板目录的接口
type TemplateServiceInterface interface {
	DescribeTemplates(ctx context.Context, req *entity.DescribeTemplatesRequest) (*entity.DescribeTemplatesResponse, error)
	SearchTemplates(ctx context.Context, req *entity.SearchTemplatesRequest) (*entity.DescribeTemplatesResponse, error)
}

type Template struct {
	templateService TemplateServiceInterface
}

func NewTemplate(templateService TemplateServiceInterface) *Template {
	return &Template{templateService: templateService}
}

func (t *Template) RegisterRoutes(router *gin.RouterGroup) {
	templateRouter := router.Group("/templates")
	templateRouter.POST("/describe", ginx.Adapt5(t.DescribeTemplates))
	templateRouter.POST("/search", ginx.Adapt5(t.SearchTemplates))
}

func (t *Template) DescribeTemplates(ctx *gin.Context, req *entity.DescribeTemplatesRequest) (*entity.DescribeTemplatesResponse, error) {
	return t.templateService.DescribeTemplates(ctx, req)
}

func (t *Template) SearchTemplates(ctx *gin.Context, req *entity.SearchTemplatesRequest) (*entity.DescribeTemplatesResponse, error) {
	return t.templateService.SearchTemplates(ctx, req)
}
