// Package ginx 提供 gin 框架的 handler 适配器，支持自动参数绑定和响应处理
//
// 请求和响应都使用 JSON。错误统一渲染为 apierror.ErrorResponse，
// 状态码取自错误链上第一个 *apierror.Error，响应中带上请求 ID。
//
// 支持多种 handler 函数签名：
//
//	// 1. 有参数，有返回值，有 error
//	func(c *gin.Context, args *Args) (resp, error)
//
//	// 2. 有参数，只有 error
//	func(c *gin.Context, args *Args) error
//
//	// 3. 无参数，有返回值，有 error
//	func(c *gin.Context) (resp, error)
//
//	// 4. 无参数，只有返回值
//	func(c *gin.Context) resp
//
// 使用示例：
//
//	router := gin.New()
//	router.Use(ginx.RequestID(idgen.GenerateRequestID))
//
//	router.POST("/DescribeInstances", ginx.Adapt5(func(c *gin.Context, args *DescribeInstancesRequest) (*DescribeInstancesResponse, error) {
//	    return svc.DescribeInstances(c, args)
//	}))
package ginx
