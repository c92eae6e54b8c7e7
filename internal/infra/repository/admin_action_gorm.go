package repository

import (
	"context"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"gorm.io/gorm"
)

type AdminActionGormRepository struct {
	db *gorm.DB
}

func NewAdminActionGormRepository(db *gorm.DB) *AdminActionGormRepository {
	return &AdminActionGormRepository{db: db}
}

func (r *AdminActionGormRepository) Create(ctx context.Context, action model.AdminAction) error {
	return r.db.WithContext(ctx).Create(&action).Error
}

func (r *AdminActionGormRepository) List(ctx context.Context, f repo.AdminActionFilter) ([]model.AdminAction, error) {
	q := r.db.WithContext(ctx).Model(&model.AdminAction{})

	if f.AdminID != nil {
		q = q.Where("admin_id = ?", *f.AdminID)
	}
	if f.ActionType != nil {
		q = q.Where("action_type = ?", *f.ActionType)
	}
	if f.TargetTable != nil {
		q = q.Where("target_table = ?", *f.TargetTable)
	}
	if f.TargetID != nil {
		q = q.Where("target_id = ?", *f.TargetID)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var actions []model.AdminAction
	if err := q.Order("id desc").Limit(limit).Offset(f.Offset).Find(&actions).Error; err != nil {
		return []model.AdminAction{}, err
	}
	return actions, nil
}
