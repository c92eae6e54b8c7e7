package repository

import (
	"context"
	"time"

	"bookmarket/internal/domain/model"
)

//監査ログの絞り込み条件。

type AdminActionFilter struct {
	AdminID     *int64
	ActionType  *model.AdminActionType
	TargetTable *string
	TargetID    *int64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// 監査ログの保存・一覧取得の約束。
type AdminActionRepository interface {
	//監査ログを1件保存
	Create(ctx context.Context, action model.AdminAction) error

	//監査ログを条件で一覧取得。
	List(ctx context.Context, filter AdminActionFilter) ([]model.AdminAction, error)
}
