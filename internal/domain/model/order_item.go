package model

import "time"

// 購入明細のスナップショット。作成後は変更しない。
type OrderItem struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64     `gorm:"not null;index" json:"order_id"`
	BookID        int64     `gorm:"not null;index" json:"book_id"`
	SellerID      int64     `gorm:"not null;index" json:"seller_id"`
	TitleSnapshot string    `gorm:"type:varchar(255);not null" json:"title_snapshot"`
	Quantity      int64     `gorm:"not null" json:"quantity"`
	PricePerItem  int64     `gorm:"not null;column:price_per_item" json:"price_per_item"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
