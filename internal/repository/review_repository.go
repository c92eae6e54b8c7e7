package repository

import (
	"context"

	"bookmarket/internal/domain/model"
)

// 一覧表示用にレビュアー名を添えて返す
type ReviewWithUser struct {
	model.BookReview
	Username string `json:"username"`
}

// レビューの集計結果
type ReviewStats struct {
	ReviewCount   int64   `json:"review_count"`
	AverageRating float64 `json:"average_rating"`
}

type ReviewRepository interface {
	Create(ctx context.Context, r model.BookReview) (model.BookReview, error)
	FindByID(ctx context.Context, reviewID int64) (model.BookReview, error)
	ListByBookID(ctx context.Context, bookID int64) ([]ReviewWithUser, error)

	//(user, book) のレビューが既にあるか
	Exists(ctx context.Context, bookID int64, userID int64) (bool, error)

	//AVGはSUM(rating)/COUNT(*)。小数1桁への丸めはusecase側。
	Stats(ctx context.Context, bookID int64) (ReviewStats, error)

	DeleteByID(ctx context.Context, reviewID int64) error

	//退会カスケード用
	DeleteAllByUserID(ctx context.Context, userID int64) error
}
