package ginx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/pkg/apierror"
)

// renderResponse 渲染 JSON 响应，nil 返回 204
func renderResponse(ctx *gin.Context, response any) {
	if response == nil {
		ctx.Status(http.StatusNoContent)
		return
	}

	// 基本类型特殊处理
	switch v := response.(type) {
	case string:
		ctx.String(http.StatusOK, v)
		return
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, bool:
		ctx.JSON(http.StatusOK, gin.H{"value": v})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// renderError 渲染错误响应
// 错误链上有 *apierror.Error 时使用它的状态码和内容
// 其他错误按 statusCode 渲染为通用错误，不把内部错误信息返回给调用方
func renderError(ctx *gin.Context, statusCode int, err error) {
	requestID := GetRequestID(ctx)

	if errorResp, ok := err.(*apierror.ErrorResponse); ok {
		if len(errorResp.Errors) > 0 && errorResp.Errors[0].HTTPStatus > 0 {
			statusCode = errorResp.Errors[0].HTTPStatus
		}
		if errorResp.RequestID == "" {
			errorResp.RequestID = requestID
		}
		ctx.AbortWithStatusJSON(statusCode, errorResp)
		return
	}

	apiErr, ok := apierror.As(err)
	if !ok {
		base := apierror.ErrInternalError
		if statusCode == http.StatusBadRequest {
			base = apierror.ErrInvalidParameter
		}
		apiErr = apierror.WrapError(base, base.Message, err)
		if statusCode == http.StatusBadRequest {
			// 参数错误的描述对调用方有用
			apiErr.Message = err.Error()
		}
	}
	if apiErr.HTTPStatus > 0 {
		statusCode = apiErr.HTTPStatus
	}

	event := zerolog.Ctx(ctx.Request.Context()).Warn()
	if statusCode >= http.StatusInternalServerError {
		event = zerolog.Ctx(ctx.Request.Context()).Error()
	}
	event.Err(err).
		Str("path", ctx.FullPath()).
		Int("status", statusCode).
		Msg("Request failed")

	ctx.AbortWithStatusJSON(statusCode, apierror.NewErrorResponse(requestID, apiErr))
}
