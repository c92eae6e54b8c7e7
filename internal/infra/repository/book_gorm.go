package repository

import (
	"context"
	"errors"
	"strings"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"gorm.io/gorm"
)

type BookGormRepository struct {
	db *gorm.DB
}

// DI
func NewBookGormRepository(db *gorm.DB) *BookGormRepository {
	return &BookGormRepository{db: db}
}

// approvedの本だけを、検索/カテゴリ/状態/価格帯/ソート/ページング付きで返す。
func (r *BookGormRepository) ListBrowse(ctx context.Context, q repo.BookListQuery) ([]model.Book, int64, error) {
	var books []model.Book
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Book{})

	// 公開はapprovedのみ
	tx = tx.Where("status = ?", model.BookStatusApproved)

	// qはtitle/author/isbn/descriptionを対象。大文字小文字は区別しない。
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(q.Q)) + "%"
		tx = tx.Where(
			"LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(isbn) LIKE ? OR LOWER(description) LIKE ?",
			like, like, like, like,
		)
	}

	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}
	if q.Condition != "" {
		tx = tx.Where("condition = ?", q.Condition)
	}

	//価格帯
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Book{}, 0, err
	}

	//sort
	switch q.Sort {
	case "oldest":
		tx = tx.Order("created_at asc").Order("id asc")
	case "price_asc":
		tx = tx.Order("price asc").Order("id asc")
	case "price_desc":
		tx = tx.Order("price desc").Order("id desc")
	case "title_asc":
		tx = tx.Order("title asc").Order("id asc")
	case "title_desc":
		tx = tx.Order("title desc").Order("id desc")
	default:
		tx = tx.Order("created_at desc").Order("id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Find(&books).Error; err != nil {
		return []model.Book{}, 0, err
	}

	return books, total, nil
}

func (r *BookGormRepository) FindByID(ctx context.Context, bookID int64) (model.Book, error) {
	var b model.Book
	err := r.db.WithContext(ctx).First(&b, bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Book{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (r *BookGormRepository) IncrementViews(ctx context.Context, bookID int64) error {
	return r.db.WithContext(ctx).Model(&model.Book{}).
		Where("id = ?", bookID).
		Update("views_count", gorm.Expr("views_count + 1")).Error
}

func (r *BookGormRepository) Create(ctx context.Context, b model.Book) (model.Book, error) {
	if err := r.db.WithContext(ctx).Create(&b).Error; err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (r *BookGormRepository) Update(ctx context.Context, b model.Book) error {
	res := r.db.WithContext(ctx).Model(&model.Book{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"title":             b.Title,
		"author":            b.Author,
		"isbn":              b.ISBN,
		"description":       b.Description,
		"price":             b.Price,
		"condition":         b.Condition,
		"cover_image":       b.CoverImage,
		"additional_images": b.AdditionalImages,
		"category_id":       b.CategoryID,
		"status":            b.Status,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *BookGormRepository) UpdateStatus(ctx context.Context, bookID int64, status model.BookStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Book{}).
		Where("id = ?", bookID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// fromのときだけ更新する条件付きUPDATE。同時購入の競合はここで負ける。
func (r *BookGormRepository) UpdateStatusIf(ctx context.Context, bookID int64, from model.BookStatus, to model.BookStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Book{}).
		Where("id = ? AND status = ?", bookID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *BookGormRepository) ListBySellerID(ctx context.Context, sellerID int64, page int, limit int) ([]model.Book, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Book{}).Where("seller_id = ?", sellerID)
	if err := q.Count(&total).Error; err != nil {
		return []model.Book{}, 0, err
	}

	var books []model.Book
	offset := (page - 1) * limit
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&books).Error; err != nil {
		return []model.Book{}, 0, err
	}
	return books, total, nil
}

func (r *BookGormRepository) ListByStatus(ctx context.Context, status model.BookStatus, page int, limit int) ([]model.Book, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Book{}).Where("status = ?", status)
	if err := q.Count(&total).Error; err != nil {
		return []model.Book{}, 0, err
	}

	var books []model.Book
	offset := (page - 1) * limit
	if err := q.Order("id asc").Limit(limit).Offset(offset).Find(&books).Error; err != nil {
		return []model.Book{}, 0, err
	}
	return books, total, nil
}

func (r *BookGormRepository) DeleteByID(ctx context.Context, bookID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Book{}, bookID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *BookGormRepository) DeleteBySellerID(ctx context.Context, sellerID int64) error {
	return r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Delete(&model.Book{}).Error
}
