// Package pterodactyl 提供 Pterodactyl 面板 Application API 的类型化客户端
//
// 所有请求都是带 Bearer Token 的 JSON over HTTPS，路径前缀为 /api/application。
// 列表接口会自动遍历所有分页。
//
// 错误约定：客户端不会向上层暴露原始的网络错误，所有失败都会被转换成 apierror 的错误种类：
//   - 网络错误、超时、非 2xx 响应：apierror.ErrRemoteTransport，RawError 为 *ResponseError 或原始网络错误
//   - GetEgg 返回 404：apierror.ErrEggNotFound
//   - CreateServer 因为 allocation 已被占用而失败：apierror.ErrPlacementConflict
//
// 使用示例：
//
//	client, err := pterodactyl.New(&pterodactyl.Config{
//	    BaseURL: "https://panel.example.com",
//	    APIKey:  "ptla_xxx",
//	    Timeout: 15 * time.Second,
//	})
//	nodes, err := client.ListNodes(ctx)
package pterodactyl
