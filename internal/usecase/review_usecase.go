package usecase

import (
	"context"
	"math"
	"net/http"
	"strings"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
)

type ReviewUsecase struct {
	reviewRepo repo.ReviewRepository
	bookRepo   repo.BookRepository
	audit      *AuditRecorder
}

func NewReviewUsecase(reviewRepo repo.ReviewRepository, bookRepo repo.BookRepository, audit *AuditRecorder) *ReviewUsecase {
	return &ReviewUsecase{
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
		audit:      audit,
	}
}

type CreateReviewInput struct {
	BookID     int64
	Rating     int
	ReviewText string
}

type BookReviewsOutput struct {
	Reviews       []repo.ReviewWithUser `json:"reviews"`
	ReviewCount   int64                 `json:"review_count"`
	AverageRating float64               `json:"average_rating"`
}

// 投稿は1ユーザー1冊につき1件。自分の出品にはレビューできない。
func (u *ReviewUsecase) Create(ctx context.Context, userID int64, in CreateReviewInput) (model.BookReview, error) {
	if userID <= 0 {
		return model.BookReview{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.BookID <= 0 {
		return model.BookReview{}, NewHTTPError(http.StatusBadRequest, "invalid book_id")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return model.BookReview{}, NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(in.ReviewText) == "" {
		return model.BookReview{}, NewHTTPError(http.StatusBadRequest, "review text required")
	}

	b, err := u.bookRepo.FindByID(ctx, in.BookID)
	if err == repo.ErrNotFound {
		return model.BookReview{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.BookReview{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//未承認・却下の本にはレビューを付けられない
	if b.Status == model.BookStatusPending || b.Status == model.BookStatusRejected {
		return model.BookReview{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if b.SellerID == userID {
		return model.BookReview{}, NewHTTPError(http.StatusBadRequest, "cannot review own book")
	}

	exists, err := u.reviewRepo.Exists(ctx, in.BookID, userID)
	if err != nil {
		return model.BookReview{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return model.BookReview{}, NewHTTPError(http.StatusConflict, "already reviewed")
	}

	created, err := u.reviewRepo.Create(ctx, model.BookReview{
		BookID:     in.BookID,
		UserID:     userID,
		Rating:     in.Rating,
		ReviewText: strings.TrimSpace(in.ReviewText),
	})
	if err != nil {
		return model.BookReview{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

// 本のレビュー一覧＋集計。平均は小数1桁に丸める。
func (u *ReviewUsecase) ListByBook(ctx context.Context, bookID int64) (BookReviewsOutput, error) {
	if bookID <= 0 {
		return BookReviewsOutput{}, NewHTTPError(http.StatusBadRequest, "invalid book_id")
	}

	b, err := u.bookRepo.FindByID(ctx, bookID)
	if err == repo.ErrNotFound {
		return BookReviewsOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return BookReviewsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if b.Status == model.BookStatusPending || b.Status == model.BookStatusRejected {
		return BookReviewsOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	reviews, err := u.reviewRepo.ListByBookID(ctx, bookID)
	if err != nil {
		return BookReviewsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	stats, err := u.reviewRepo.Stats(ctx, bookID)
	if err != nil {
		return BookReviewsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return BookReviewsOutput{
		Reviews:       reviews,
		ReviewCount:   stats.ReviewCount,
		AverageRating: math.Round(stats.AverageRating*10) / 10,
	}, nil
}

// 自分のレビューの削除
func (u *ReviewUsecase) DeleteOwn(ctx context.Context, userID int64, reviewID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if reviewID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	rv, err := u.reviewRepo.FindByID(ctx, reviewID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//他人のレビューは「存在しない扱い」にする
	if rv.UserID != userID {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.reviewRepo.DeleteByID(ctx, reviewID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 管理者によるレビュー削除（モデレーション）
func (u *ReviewUsecase) AdminDelete(ctx context.Context, adminID int64, reviewID int64) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if reviewID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.reviewRepo.DeleteByID(ctx, reviewID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.audit.Record(ctx, model.AdminAction{
		AdminID:     adminID,
		ActionType:  model.AdminActionDeleteReview,
		Description: "review removed by admin",
		TargetTable: "book_reviews",
		TargetID:    reviewID,
	})

	return nil
}
