package model

import "time"

// 出品のステータス。approved だけが購入者に見える。
type BookStatus string

const (
	BookStatusPending  BookStatus = "pending"
	BookStatusApproved BookStatus = "approved"
	BookStatusRejected BookStatus = "rejected"
	BookStatusSold     BookStatus = "sold"
)

// 中古本のコンディション
type BookCondition string

const (
	ConditionNew       BookCondition = "New"
	ConditionExcellent BookCondition = "Excellent"
	ConditionGood      BookCondition = "Good"
	ConditionFair      BookCondition = "Fair"
	ConditionPoor      BookCondition = "Poor"
)

type Book struct {
	ID          int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string        `gorm:"type:varchar(255);not null" json:"title"`
	Author      string        `gorm:"type:varchar(255);not null" json:"author"`
	ISBN        string        `gorm:"type:varchar(20);index" json:"isbn"`
	Description string        `gorm:"type:text" json:"description"`
	Price       int64         `gorm:"not null" json:"price"`
	Condition   BookCondition `gorm:"type:varchar(20);not null" json:"condition"`

	//カバー画像と追加画像（追加分はJSON配列の文字列）
	CoverImage       string `gorm:"type:varchar(255)" json:"cover_image"`
	AdditionalImages string `gorm:"type:text" json:"additional_images"`

	SellerID   int64      `gorm:"not null;index" json:"seller_id"`
	CategoryID int64      `gorm:"not null;index" json:"category_id"`
	Status     BookStatus `gorm:"type:varchar(20);not null;index;default:'pending'" json:"status"`
	ViewsCount int64      `gorm:"not null;default:0" json:"views_count"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
