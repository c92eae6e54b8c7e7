package model

import "time"

// 管理者操作の種類
type AdminActionType string

const (
	AdminActionApproveBook       AdminActionType = "APPROVE_BOOK"
	AdminActionRejectBook        AdminActionType = "REJECT_BOOK"
	AdminActionDeleteBook        AdminActionType = "DELETE_BOOK"
	AdminActionUpdateOrderStatus AdminActionType = "UPDATE_ORDER_STATUS"
	AdminActionUpdateUser        AdminActionType = "UPDATE_USER"
	AdminActionDeleteUser        AdminActionType = "DELETE_USER"
	AdminActionDeleteReview      AdminActionType = "DELETE_REVIEW"
)

// 監査ログ（管理者操作ログ）。追記のみで更新しない。
// 「誰が」「何を」「どの対象に」を残す。
type AdminAction struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	AdminID     int64           `gorm:"not null;index" json:"admin_id"`
	ActionType  AdminActionType `gorm:"type:varchar(50);not null;index" json:"action_type"`
	Description string          `gorm:"type:text" json:"description"`
	TargetTable string          `gorm:"type:varchar(50);not null;index" json:"target_table"`
	TargetID    int64           `gorm:"not null;index" json:"target_id"`
	CreatedAt   time.Time       `gorm:"not null;index;autoCreateTime" json:"created_at"`
}
