package entity

import "time"

// ConfirmationState 删除确认的状态
type ConfirmationState string

const (
	ConfirmationStatePending   ConfirmationState = "PendingConfirmation"
	ConfirmationStateConfirmed ConfirmationState = "Confirmed"
	ConfirmationStateCancelled ConfirmationState = "Cancelled"
)

// DeleteConfirmation 一次等待用户确认的删除操作
type DeleteConfirmation struct {
	ID             string            `json:"id"`
	ExternalUserID string            `json:"external_user_id"`
	InstanceID     int               `json:"instance_id"`
	InstanceName   string            `json:"instance_name,omitempty"`
	State          ConfirmationState `json:"state"`
	ExpiresAt      time.Time         `json:"expires_at"`
}

// RequestDeletionRequest 申请删除实例请求
type RequestDeletionRequest struct {
	ExternalUserID string `json:"external_user_id" binding:"required"`
	InstanceID     int    `json:"instance_id" binding:"required"`
}

// ResolveDeletionRequest 确认或取消删除请求
type ResolveDeletionRequest struct {
	ExternalUserID string `json:"external_user_id" binding:"required"`
	ConfirmationID string `json:"confirmation_id" binding:"required"`
}

// DeleteConfirmationResponse 删除确认响应
type DeleteConfirmationResponse struct {
	Confirmation *DeleteConfirmation `json:"confirmation"`
}
