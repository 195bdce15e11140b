// Package idgen 提供递增 ID 生成器
//
// 使用 Sonyflake 算法生成全局唯一且递增的 ID，生成的 ID 格式：
//   - 请求 ID: req-{递增数字}
//   - 删除确认 ID: cfm-{递增数字}
//
// 使用方式：
//
//	requestID, err := idgen.GenerateRequestID()
//	// requestID: "req-1234567890"
//
//	gen := idgen.New()
//	confirmationID, err := gen.GenerateConfirmationID()
package idgen
