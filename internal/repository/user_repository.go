package repository

import (
	"context"

	"bookmarket/internal/domain/model"
)

type UserListFilter struct {
	Page  int
	Limit int
	Q     string
}

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	//プロフィール・有効フラグ・最終ログインなどの更新
	Update(ctx context.Context, user *model.User) error

	//トークンのバージョンを＋１（強制ログアウト）
	IncrementTokenVersion(ctx context.Context, userID int64) error

	//管理者用の一覧
	List(ctx context.Context, f UserListFilter) ([]model.User, int64, error)

	Delete(ctx context.Context, userID int64) error
}
