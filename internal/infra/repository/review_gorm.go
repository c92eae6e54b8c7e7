package repository

import (
	"context"
	"errors"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"gorm.io/gorm"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

func (r *ReviewGormRepository) Create(ctx context.Context, review model.BookReview) (model.BookReview, error) {
	if err := r.db.WithContext(ctx).Create(&review).Error; err != nil {
		return model.BookReview{}, err
	}
	return review, nil
}

func (r *ReviewGormRepository) FindByID(ctx context.Context, reviewID int64) (model.BookReview, error) {
	var review model.BookReview
	err := r.db.WithContext(ctx).First(&review, reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.BookReview{}, repo.ErrNotFound
	}
	if err != nil {
		return model.BookReview{}, err
	}
	return review, nil
}

// レビュアー名付きで返す
func (r *ReviewGormRepository) ListByBookID(ctx context.Context, bookID int64) ([]repo.ReviewWithUser, error) {
	var rows []repo.ReviewWithUser
	err := r.db.WithContext(ctx).Model(&model.BookReview{}).
		Select("book_reviews.*, users.username AS username").
		Joins("JOIN users ON users.id = book_reviews.user_id").
		Where("book_reviews.book_id = ?", bookID).
		Order("book_reviews.id desc").
		Scan(&rows).Error
	if err != nil {
		return []repo.ReviewWithUser{}, err
	}
	return rows, nil
}

func (r *ReviewGormRepository) Exists(ctx context.Context, bookID int64, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BookReview{}).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ReviewGormRepository) Stats(ctx context.Context, bookID int64) (repo.ReviewStats, error) {
	var row struct {
		ReviewCount   int64
		AverageRating float64
	}
	err := r.db.WithContext(ctx).Model(&model.BookReview{}).
		Select("COUNT(*) AS review_count, COALESCE(AVG(rating), 0) AS average_rating").
		Where("book_id = ?", bookID).
		Scan(&row).Error
	if err != nil {
		return repo.ReviewStats{}, err
	}
	return repo.ReviewStats{
		ReviewCount:   row.ReviewCount,
		AverageRating: row.AverageRating,
	}, nil
}

func (r *ReviewGormRepository) DeleteByID(ctx context.Context, reviewID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.BookReview{}, reviewID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ReviewGormRepository) DeleteAllByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.BookReview{}).Error
}
