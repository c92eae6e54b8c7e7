package repository

import (
	"context"

	"bookmarket/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)

	//退会カスケード用（ユーザーの注文に紐づく明細をまとめて消す）
	DeleteAllByBuyerID(ctx context.Context, userID int64) error
}
