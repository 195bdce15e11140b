package ginx_test

import (
	"github.com/gin-gonic/gin"

	"github.com/jimyag/panelbot/pkg/ginx"
	"github.com/jimyag/panelbot/pkg/idgen"
)

type DescribeQuotaArgs struct {
	ExternalUserID string `json:"external_user_id" binding:"required"`
}

type Quota struct {
	Used int `json:"used"`
	Max  int `json:"max"`
}

func ExampleAdapt5() {
	router := gin.New()
	router.Use(ginx.RequestID(idgen.GenerateRequestID))

	router.POST("/DescribeQuota", ginx.Adapt5(func(c *gin.Context, args *DescribeQuotaArgs) (*Quota, error) {
		return &Quota{Used: 1, Max: 2}, nil
	}))

	_ = router.Run(":7788")
}
