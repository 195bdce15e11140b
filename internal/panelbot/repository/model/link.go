package model

import "time"

// IdentityLink 聊天账号与面板账号的绑定关系表
type IdentityLink struct {
	ExternalUserID string    `gorm:"type:text;primaryKey;column:external_user_id" json:"externalUserID"`
	PanelUserID    int       `gorm:"type:integer;not null;index:idx_links_panel_user_id;column:panel_user_id" json:"panelUserID"`
	UpdatedAt      time.Time `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
}

// TableName 指定表名
func (IdentityLink) TableName() string {
	return "identity_links"
}

// AuthCode 绑定码表
type AuthCode struct {
	Code           string    `gorm:"type:text;primaryKey;column:code" json:"code"`
	ExternalUserID string    `gorm:"type:text;not null;index:idx_auth_codes_external_user_id;column:external_user_id" json:"externalUserID"`
	IssuedAt       time.Time `gorm:"type:datetime;not null;column:issued_at" json:"issuedAt"`
}

// TableName 指定表名
func (AuthCode) TableName() string {
	return "auth_codes"
}
