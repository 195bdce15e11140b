package model

// Ownership 实例归属表，每行是一个用户拥有的一个实例
// Position 保留实例在用户列表中的顺序
type Ownership struct {
	ExternalUserID string `gorm:"type:text;primaryKey;column:external_user_id" json:"externalUserID"`
	InstanceID     int    `gorm:"type:integer;primaryKey;index:idx_ownerships_instance_id;column:instance_id" json:"instanceID"`
	Position       int    `gorm:"type:integer;not null;default:0;column:position" json:"position"`
}

// TableName 指定表名
func (Ownership) TableName() string {
	return "ownerships"
}
