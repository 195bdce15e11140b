package ginx

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HeaderRequestID 请求 ID 使用的 header
const HeaderRequestID = "X-Request-ID"

// contextKey 用于在 gin.Context 中存储值的类型安全 key
type contextKey struct{}

// requestIDKey 用于存储请求 ID
var requestIDKey = contextKey{}

// RequestID 为每个请求分配请求 ID
// 调用方通过 X-Request-ID 传入的 ID 会被沿用，否则使用 generate 生成
// 请求 ID 同时写入响应 header 和请求的 logger
func RequestID(generate func() (string, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(HeaderRequestID)
		if id == "" {
			var err error
			if id, err = generate(); err != nil {
				zerolog.Ctx(ctx.Request.Context()).Warn().Err(err).Msg("Failed to generate request ID")
			}
		}
		ctx.Set(requestIDKey, id)
		ctx.Header(HeaderRequestID, id)

		logger := zerolog.Ctx(ctx.Request.Context()).With().Str("request_id", id).Logger()
		ctx.Request = ctx.Request.WithContext(logger.WithContext(ctx.Request.Context()))
		ctx.Next()
	}
}

// GetRequestID 获取当前请求的 ID，没有时返回空字符串
func GetRequestID(ctx *gin.Context) string {
	id, exists := ctx.Get(requestIDKey)
	if !exists {
		return ""
	}
	if str, ok := id.(string); ok {
		return str
	}
	return ""
}
