package repository

import (
	"context"
	"errors"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&cats).Error; err != nil {
		return []model.Category{}, err
	}
	return cats, nil
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, categoryID int64) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).First(&c, categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// 空のときだけ初期カテゴリを入れる
func (r *CategoryGormRepository) SeedDefaults(ctx context.Context) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []model.Category{
		{Name: "Fiction", Description: "Novels and short stories"},
		{Name: "Non-fiction", Description: "Biography, history, essays"},
		{Name: "Science", Description: "Science and mathematics"},
		{Name: "Technology", Description: "Programming and engineering"},
		{Name: "Academic", Description: "Textbooks and study guides"},
		{Name: "Children", Description: "Books for children"},
		{Name: "Comics", Description: "Comics and graphic novels"},
		{Name: "Other", Description: "Everything else"},
	}
	return r.db.WithContext(ctx).Create(&defaults).Error
}
