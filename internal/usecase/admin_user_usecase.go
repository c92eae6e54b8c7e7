package usecase

import (
	"context"
	"fmt"
	"net/http"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
)

type AdminUserUsecase struct {
	users   repo.UserRepository
	actions repo.AdminActionRepository
	tx      repo.TransactionManager
	audit   *AuditRecorder
}

func NewAdminUserUsecase(
	users repo.UserRepository,
	actions repo.AdminActionRepository,
	tx repo.TransactionManager,
	audit *AuditRecorder,
) *AdminUserUsecase {
	return &AdminUserUsecase{
		users:   users,
		actions: actions,
		tx:      tx,
		audit:   audit,
	}
}

type AdminUserListOutput struct {
	Items []model.User `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// ユーザー一覧（username/emailの部分一致検索つき）
func (u *AdminUserUsecase) List(ctx context.Context, page int, limit int, q string) (AdminUserListOutput, error) {
	if page < 1 {
		return AdminUserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return AdminUserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.users.List(ctx, repo.UserListFilter{Page: page, Limit: limit, Q: q})
	if err != nil {
		return AdminUserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return AdminUserListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *AdminUserUsecase) GetDetail(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return model.User{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return *user, nil
}

// 有効/停止の切り替え。自分自身は停止できない。
func (u *AdminUserUsecase) SetActive(ctx context.Context, adminID int64, targetUserID int64, active bool) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if targetUserID == adminID && !active {
		return NewHTTPError(http.StatusBadRequest, "cannot disable yourself")
	}

	user, err := u.users.FindByID(ctx, targetUserID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user.IsActive = active
	if err := u.users.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//停止したら既存JWTも無効化する
	if !active {
		if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	u.audit.Record(ctx, model.AdminAction{
		AdminID:     adminID,
		ActionType:  model.AdminActionUpdateUser,
		Description: fmt.Sprintf("is_active -> %t", active),
		TargetTable: "users",
		TargetID:    targetUserID,
	})

	return nil
}

// 管理者によるユーザー削除。退会と同じカスケードで消す。
// 自分自身は消せない。
func (u *AdminUserUsecase) Delete(ctx context.Context, adminID int64, targetUserID int64) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if targetUserID == adminID {
		return NewHTTPError(http.StatusBadRequest, "cannot delete yourself")
	}

	if _, err := u.users.FindByID(ctx, targetUserID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Reviews().DeleteAllByUserID(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().DeleteAllByUserID(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Books().DeleteBySellerID(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().DeleteAllByBuyerID(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Orders().DeleteAllByUserID(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.RefreshTokens().DeleteAllByUserID(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Users().Delete(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.audit.Record(ctx, model.AdminAction{
		AdminID:     adminID,
		ActionType:  model.AdminActionDeleteUser,
		Description: "user removed by admin",
		TargetTable: "users",
		TargetID:    targetUserID,
	})

	return nil
}

// 監査ログの閲覧
func (u *AdminUserUsecase) ListActions(ctx context.Context, f repo.AdminActionFilter) ([]model.AdminAction, error) {
	if f.Limit < 1 || f.Limit > 200 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	actions, err := u.actions.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return actions, nil
}
