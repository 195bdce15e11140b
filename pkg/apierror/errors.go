package apierror

import "net/http"

// 面板编排相关的错误
var (
	// ErrNotLinked 当前聊天账号还没有绑定面板账号，执行 link 流程后可恢复
	ErrNotLinked = &Error{
		Code:       "NotLinked",
		Message:    "Your chat account is not linked to a panel account yet. Run the link command first.",
		HTTPStatus: http.StatusConflict,
	}

	// ErrQuotaExceeded 已经拥有配置允许的最大实例数量，删除一个实例后可恢复
	ErrQuotaExceeded = &Error{
		Code:       "QuotaExceeded",
		Message:    "You have reached the maximum number of servers. Delete a server before creating a new one.",
		HTTPStatus: http.StatusConflict,
	}

	// ErrTemplateNotFound 模板不存在，需要管理员处理
	ErrTemplateNotFound = &Error{
		Code:       "TemplateNotFound",
		Message:    "The requested template does not exist.",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrEggNotFound 模板对应的 nest/egg 在面板上不存在，需要管理员处理
	ErrEggNotFound = &Error{
		Code:       "EggNotFound",
		Message:    "The runtime definition behind this template is missing on the panel. Please contact an administrator.",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrNoCapacity 所有节点都没有空闲的 allocation
	ErrNoCapacity = &Error{
		Code:       "NoCapacity",
		Message:    "No node has a free allocation right now. Try again later or contact an administrator.",
		HTTPStatus: http.StatusServiceUnavailable,
		Retryable:  true,
	}

	// ErrPlacementConflict 选中的 allocation 在提交前被并发请求占用
	ErrPlacementConflict = &Error{
		Code:       "PlacementConflict",
		Message:    "The selected allocation was claimed by another request.",
		HTTPStatus: http.StatusConflict,
		Retryable:  true,
	}

	// ErrOwnershipMismatch 删除请求者不是实例的所有者
	// 消息保持通用，不泄露实例是否属于其他用户
	ErrOwnershipMismatch = &Error{
		Code:       "OwnershipMismatch",
		Message:    "Server not found or you do not own it.",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrRemoteTransport 面板 API 网络错误、超时或非 2xx 响应
	// 详细信息只记录在服务端日志
	ErrRemoteTransport = &Error{
		Code:       "RemoteTransportFailure",
		Message:    "The hosting panel is unavailable right now. Please try again later.",
		HTTPStatus: http.StatusBadGateway,
		Retryable:  true,
	}

	// ErrPersistence 本地存储写入失败
	ErrPersistence = &Error{
		Code:       "PersistenceFailure",
		Message:    "Failed to persist local state.",
		HTTPStatus: http.StatusInternalServerError,
	}

	// ErrCodeNotFound 绑定码不存在、已过期或已被使用
	ErrCodeNotFound = &Error{
		Code:       "CodeNotFound",
		Message:    "The link code is invalid or has expired.",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrCreationFailed 面板拒绝了创建请求
	ErrCreationFailed = &Error{
		Code:       "CreationFailed",
		Message:    "The panel rejected the server creation request.",
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	// ErrConfirmationNotFound 删除确认不存在、已过期或不属于当前用户
	ErrConfirmationNotFound = &Error{
		Code:       "ConfirmationNotFound",
		Message:    "The confirmation is unknown or has expired.",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrInvalidParameter 请求参数不合法
	ErrInvalidParameter = &Error{
		Code:       "InvalidParameter",
		Message:    "A parameter specified in the request is not valid.",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrUnauthorized 缺少或错误的 API 凭证
	ErrUnauthorized = &Error{
		Code:       "Unauthorized",
		Message:    "Missing or invalid credentials.",
		HTTPStatus: http.StatusUnauthorized,
	}

	// ErrInternalError 内部错误
	ErrInternalError = &Error{
		Code:       "InternalError",
		Message:    "An internal error has occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}
)
