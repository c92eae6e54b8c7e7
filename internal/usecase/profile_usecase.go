package usecase

import (
	"context"
	"net/http"
	"strings"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type ProfileUsecase struct {
	users repo.UserRepository
	tx    repo.TransactionManager
}

func NewProfileUsecase(users repo.UserRepository, tx repo.TransactionManager) *ProfileUsecase {
	return &ProfileUsecase{users: users, tx: tx}
}

type ProfileOutput struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	ProfileImage string `json:"profile_image"`
}

type UpdateProfileInput struct {
	Name       string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

func (u *ProfileUsecase) Get(ctx context.Context, userID int64) (ProfileOutput, error) {
	if userID <= 0 {
		return ProfileOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return ProfileOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toProfileOutput(user), nil
}

// プロフィール更新。username/email/roleはここでは変えられない。
func (u *ProfileUsecase) Update(ctx context.Context, userID int64, in UpdateProfileInput) (ProfileOutput, error) {
	if userID <= 0 {
		return ProfileOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Name) > 255 || len(in.Phone) > 30 || len(in.Address) > 255 ||
		len(in.City) > 100 || len(in.PostalCode) > 20 || len(in.Country) > 100 {
		return ProfileOutput{}, NewHTTPError(http.StatusBadRequest, "field too long")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return ProfileOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Phone = strings.TrimSpace(in.Phone)
	user.Address = strings.TrimSpace(in.Address)
	user.City = strings.TrimSpace(in.City)
	user.PostalCode = strings.TrimSpace(in.PostalCode)
	user.Country = strings.TrimSpace(in.Country)

	if err := u.users.Update(ctx, user); err != nil {
		return ProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toProfileOutput(user), nil
}

// パスワード変更。現パスワードの照合必須。
func (u *ProfileUsecase) ChangePassword(ctx context.Context, userID int64, in ChangePasswordInput) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.CurrentPassword == "" {
		return NewHTTPError(http.StatusBadRequest, "current password required")
	}
	if len(in.NewPassword) < 8 {
		return NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return NewHTTPError(http.StatusUnauthorized, "wrong password")
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user.PasswordHash = string(pwHash)
	if err := u.users.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//既存JWT・refresh tokenを無効化（再ログインさせる）
	if err := u.users.IncrementTokenVersion(ctx, userID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// アップロード後の画像パスを反映
func (u *ProfileUsecase) SetProfileImage(ctx context.Context, userID int64, imagePath string) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if imagePath == "" {
		return NewHTTPError(http.StatusBadRequest, "image path required")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user.ProfileImage = imagePath
	if err := u.users.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// DeleteAccount は退会。関連データを1トランザクションで消す。
// レビュー → カート → 出品 → 注文明細・注文 → refresh token → 本人。
func (u *ProfileUsecase) DeleteAccount(ctx context.Context, userID int64, password string) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if password == "" {
		return NewHTTPError(http.StatusBadRequest, "password required")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//本人確認
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return NewHTTPError(http.StatusUnauthorized, "wrong password")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Reviews().DeleteAllByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().DeleteAllByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Books().DeleteBySellerID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().DeleteAllByBuyerID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Orders().DeleteAllByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.RefreshTokens().DeleteAllByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Users().Delete(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

func toProfileOutput(u *model.User) ProfileOutput {
	return ProfileOutput{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         string(u.Role),
		Name:         u.Name,
		Phone:        u.Phone,
		Address:      u.Address,
		City:         u.City,
		PostalCode:   u.PostalCode,
		Country:      u.Country,
		ProfileImage: u.ProfileImage,
	}
}
