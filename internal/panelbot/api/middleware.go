package api

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/pkg/apierror"
	"github.com/jimyag/panelbot/pkg/ginx"
)

// bearerAuth 校验 Authorization: Bearer <key>
// key 为空时：required 为 false 不校验，为 true 拒绝所有请求
func bearerAuth(key string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" && !required {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if key == "" || !ok || subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
			zerolog.Ctx(c.Request.Context()).Warn().
				Str("path", c.Request.URL.Path).
				Str("client_ip", c.ClientIP()).
				Msg("Unauthorized request")
			c.AbortWithStatusJSON(apierror.ErrUnauthorized.HTTPStatus,
				apierror.NewErrorResponse(ginx.GetRequestID(c), apierror.ErrUnauthorized))
			return
		}
		c.Next()
	}
}

// requestLogger 记录每个请求的状态和耗时
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger := zerolog.Ctx(c.Request.Context())
		event := logger.Info()
		if c.Writer.Status() >= 500 {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("Request handled")
	}
}
