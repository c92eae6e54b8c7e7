package repository

import (
	"context"

	"bookmarket/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
	Clear(ctx context.Context, cartID int64) error

	//退会カスケード用（明細→カートの順で消す）
	DeleteAllByUserID(ctx context.Context, userID int64) error
}
