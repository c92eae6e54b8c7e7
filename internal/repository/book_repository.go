package repository

import (
	"context"
	"errors"

	"bookmarket/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索（公開側）。フィルタは全部組み合わせ可能。
type BookListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	Condition  string
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string
}

// 出品（本）の永続化だけを約束。
type BookRepository interface {
	//approvedの本だけを検索・ページング付きで返す
	ListBrowse(ctx context.Context, q BookListQuery) ([]model.Book, int64, error)

	FindByID(ctx context.Context, bookID int64) (model.Book, error)

	//閲覧数を+1する
	IncrementViews(ctx context.Context, bookID int64) error

	Create(ctx context.Context, b model.Book) (model.Book, error)
	Update(ctx context.Context, b model.Book) error

	//ステータスを無条件で更新（管理者の承認/却下）
	UpdateStatus(ctx context.Context, bookID int64, status model.BookStatus) error

	//fromのときだけtoへ更新する。更新できたらtrue。
	//購入確定（approved→sold）と返品（sold→approved）の競合ガード。
	UpdateStatusIf(ctx context.Context, bookID int64, from model.BookStatus, to model.BookStatus) (bool, error)

	//出品者の本一覧（全ステータス）
	ListBySellerID(ctx context.Context, sellerID int64, page int, limit int) ([]model.Book, int64, error)

	//管理者のモデレーション用（ステータス絞り込み）
	ListByStatus(ctx context.Context, status model.BookStatus, page int, limit int) ([]model.Book, int64, error)

	DeleteByID(ctx context.Context, bookID int64) error

	//退会カスケード用
	DeleteBySellerID(ctx context.Context, sellerID int64) error
}
