package entity

import "time"

// IdentityLink 聊天账号与面板账号的绑定关系
type IdentityLink struct {
	ExternalUserID string `json:"external_user_id"`
	PanelUserID    int    `json:"panel_user_id"`
}

// AuthCode 一次性绑定码
type AuthCode struct {
	Code           string    `json:"code"`
	ExternalUserID string    `json:"external_user_id"`
	IssuedAt       time.Time `json:"issued_at"`
}

// Expired 判断绑定码在 now 时刻是否已经过期
func (c AuthCode) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.IssuedAt) >= ttl
}

// PanelAccount 面板账号
type PanelAccount struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RequestLinkRequest 申请绑定码请求
type RequestLinkRequest struct {
	ExternalUserID string `json:"external_user_id" binding:"required"`
}

// RequestLinkResponse 申请绑定码响应
type RequestLinkResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	// LinkURL 用户需要打开的授权链接，未启用 OAuth 时为空
	LinkURL string `json:"link_url,omitempty"`
}

// RedeemLinkRequest 兑换绑定码请求
type RedeemLinkRequest struct {
	Code        string `json:"code" binding:"required"`
	Email       string `json:"email" binding:"required"`
	DisplayName string `json:"display_name"`
	// ExternalUserID 经过身份提供方验证的聊天账号，不为空时必须与绑定码的申请者一致
	ExternalUserID string `json:"external_user_id"`
}

// LinkResult 绑定结果
type LinkResult struct {
	ExternalUserID string        `json:"external_user_id"`
	Account        *PanelAccount `json:"account"`
	NewAccount     bool          `json:"new_account"`
	// Password 只有新建账号时返回一次
	Password string `json:"password,omitempty"`
	PanelURL string `json:"panel_url"`
}

// DescribeLinkRequest 查询绑定状态请求
type DescribeLinkRequest struct {
	ExternalUserID string `json:"external_user_id" binding:"required"`
}

// DescribeLinkResponse 查询绑定状态响应
type DescribeLinkResponse struct {
	Linked      bool          `json:"linked"`
	PanelUserID int           `json:"panel_user_id,omitempty"`
	Account     *PanelAccount `json:"account,omitempty"`
	PanelURL    string        `json:"panel_url,omitempty"`
}

// WaitLinkRequest 等待绑定完成请求
type WaitLinkRequest struct {
	ExternalUserID string `json:"external_user_id" binding:"required"`
	// TimeoutSeconds 最长等待时间，0 使用服务端默认值
	TimeoutSeconds int `json:"timeout_seconds"`
}

// ResetPasswordRequest 重置面板密码请求
type ResetPasswordRequest struct {
	ExternalUserID string `json:"external_user_id" binding:"required"`
}

// ResetPasswordResponse 重置面板密码响应
type ResetPasswordResponse struct {
	Account  *PanelAccount `json:"account"`
	Password string        `json:"password"`
	PanelURL string        `json:"panel_url"`
}
