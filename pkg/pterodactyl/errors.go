package pterodactyl

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jimyag/panelbot/pkg/apierror"
)

// ErrorDetail 面板返回的单条错误
type ErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// ResponseError 面板返回非 2xx 状态码
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Details    []ErrorDetail
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("pterodactyl: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message())
}

// Message 返回面板给出的错误描述，没有结构化错误时返回原始响应体
func (e *ResponseError) Message() string {
	if len(e.Details) > 0 {
		msgs := make([]string, 0, len(e.Details))
		for _, d := range e.Details {
			if d.Detail != "" {
				msgs = append(msgs, d.Detail)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return strings.TrimSpace(e.Body)
}

// IsNotFound 是否为 404
func (e *ResponseError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsClientError 是否为面板拒绝了请求（4xx）
func (e *ResponseError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsAllocationConflict 是否因为 allocation 已被占用而失败
// 面板没有专门的错误码，只能根据状态码和错误描述判断
func (e *ResponseError) IsAllocationConflict() bool {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
	default:
		return false
	}
	text := strings.ToLower(e.Body + " " + e.Message())
	if !strings.Contains(text, "allocation") {
		return false
	}
	for _, hint := range []string{"assigned", "already", "in use", "not available"} {
		if strings.Contains(text, hint) {
			return true
		}
	}
	return false
}

// ResponseErrorOf 从错误链中取出 *ResponseError
func ResponseErrorOf(err error) (*ResponseError, bool) {
	var re *ResponseError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// transportError 把请求失败包装成 RemoteTransportFailure
// 对外只使用通用提示，方法、路径和状态码只保留在 RawError 中供日志使用
func transportError(msg string, err error) error {
	return apierror.Wrap(apierror.ErrRemoteTransport, fmt.Errorf("%s: %w", msg, err))
}
