package usecase

import (
	"context"
	"fmt"
	"net/http"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
)

type AdminBookUsecase struct {
	bookRepo repo.BookRepository
	audit    *AuditRecorder
}

func NewAdminBookUsecase(bookRepo repo.BookRepository, audit *AuditRecorder) *AdminBookUsecase {
	return &AdminBookUsecase{bookRepo: bookRepo, audit: audit}
}

// モデレーション待ちなどの一覧（ステータス絞り込み）
func (u *AdminBookUsecase) ListByStatus(ctx context.Context, status string, page int, limit int) (BookListOutput, error) {
	if page < 1 {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	s := model.BookStatus(status)
	switch s {
	case model.BookStatusPending, model.BookStatusApproved,
		model.BookStatusRejected, model.BookStatusSold:
	default:
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	items, total, err := u.bookRepo.ListByStatus(ctx, s, page, limit)
	if err != nil {
		return BookListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return BookListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 承認 or 却下。売却済みの出品は対象外。
func (u *AdminBookUsecase) Moderate(ctx context.Context, adminID int64, bookID int64, approve bool) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid book id")
	}

	b, err := u.bookRepo.FindByID(ctx, bookID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if b.Status == model.BookStatusSold {
		return NewHTTPError(http.StatusBadRequest, "book already sold")
	}

	newStatus := model.BookStatusApproved
	actionType := model.AdminActionApproveBook
	if !approve {
		newStatus = model.BookStatusRejected
		actionType = model.AdminActionRejectBook
	}

	if err := u.bookRepo.UpdateStatus(ctx, bookID, newStatus); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//監査ログ（commit後・失敗しても戻さない）
	u.audit.Record(ctx, model.AdminAction{
		AdminID:     adminID,
		ActionType:  actionType,
		Description: fmt.Sprintf("book status %s -> %s", b.Status, newStatus),
		TargetTable: "books",
		TargetID:    bookID,
	})

	return nil
}

// 管理者による出品削除
func (u *AdminBookUsecase) Delete(ctx context.Context, adminID int64, bookID int64) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid book id")
	}

	err := u.bookRepo.DeleteByID(ctx, bookID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.audit.Record(ctx, model.AdminAction{
		AdminID:     adminID,
		ActionType:  model.AdminActionDeleteBook,
		Description: "book removed by admin",
		TargetTable: "books",
		TargetID:    bookID,
	})

	return nil
}
