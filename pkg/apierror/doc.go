// Package apierror 提供统一的错误类型，服务层和 HTTP 层都使用它来表达错误种类
//
// 错误响应格式：
//
//	{
//	    "errors": [
//	        {
//	            "code": "QuotaExceeded",
//	            "message": "You have reached the maximum number of servers. ..."
//	        }
//	    ],
//	    "requestID": "req-1234567890"
//	}
//
// RawError 只用于服务端日志，永远不会序列化给调用方，面板返回的原始错误信息
// 也因此不会暴露给普通用户。
//
// 使用示例：
//
//	// 直接使用预定义的错误
//	return apierror.ErrQuotaExceeded
//
//	// 包装底层错误，保留错误种类
//	return apierror.Wrap(apierror.ErrRemoteTransport, err)
//
//	// 判断错误种类
//	if errors.Is(err, apierror.ErrNoCapacity) { ... }
//
//	// 判断是否可以稍后重试
//	if apierror.IsRetryable(err) { ... }
package apierror
