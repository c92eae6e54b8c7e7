package repository

import (
	"context"

	"bookmarket/internal/domain/model"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, categoryID int64) (model.Category, error)

	//初期データ投入（既にあれば何もしない）
	SeedDefaults(ctx context.Context) error
}
