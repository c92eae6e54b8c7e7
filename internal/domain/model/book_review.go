package model

import "time"

// レビューは (user, book) につき1件。ratingは1〜5。
type BookReview struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BookID     int64     `gorm:"not null;index:idx_book_user,unique" json:"book_id"`
	UserID     int64     `gorm:"not null;index:idx_book_user,unique" json:"user_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	ReviewText string    `gorm:"type:text;not null" json:"review_text"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
