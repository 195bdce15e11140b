// Package oauth 实现网页端的账号绑定流程
//
// 聊天机器人把 /oauth/start?code=<绑定码> 发给用户，用户在聊天平台授权后，
// 回调中取得经过验证的账号 ID 和邮箱，再用绑定码完成绑定。
// 绑定码放在签名的 state 中，浏览器 cookie 中保存 state 的 nonce 和 PKCE verifier。
package oauth
