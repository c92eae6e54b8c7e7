package usecase_test

import (
	"context"
	"testing"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestProfileUsecase_Update_TrimsAndKeepsIdentity(t *testing.T) {
	ctx := context.Background()

	users := new(UserRepoMock)
	uc := usecase.NewProfileUsecase(users, new(TxManagerMock))

	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:       1,
		Username: "alice",
		Email:    "alice@example.com",
		Role:     model.RoleCustomer,
	}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		//username/emailは変わらない
		return u.Name == "Alice Smith" && u.Username == "alice" && u.Email == "alice@example.com"
	})).Return(nil)

	out, err := uc.Update(ctx, 1, usecase.UpdateProfileInput{Name: "  Alice Smith  ", City: "Tokyo"})
	assert.NoError(t, err)
	assert.Equal(t, "Alice Smith", out.Name)
	assert.Equal(t, "alice", out.Username)

	users.AssertExpectations(t)
}

func TestProfileUsecase_Update_FieldTooLong(t *testing.T) {
	uc := usecase.NewProfileUsecase(new(UserRepoMock), new(TxManagerMock))

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}

	_, err := uc.Update(context.Background(), 1, usecase.UpdateProfileInput{Name: string(long)})
	assertErrContains(t, err, "field too long")
}

func TestProfileUsecase_ChangePassword_WrongCurrent(t *testing.T) {
	ctx := context.Background()

	users := new(UserRepoMock)
	uc := usecase.NewProfileUsecase(users, new(TxManagerMock))

	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:           1,
		PasswordHash: hashPassword(t, "password123"),
	}, nil)

	err := uc.ChangePassword(ctx, 1, usecase.ChangePasswordInput{
		CurrentPassword: "wrong",
		NewPassword:     "newpassword",
	})
	assertErrContains(t, err, "wrong password")

	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// 変更後は既存のセッションを全部落とす
func TestProfileUsecase_ChangePassword_BumpsTokenVersion(t *testing.T) {
	ctx := context.Background()

	users := new(UserRepoMock)
	uc := usecase.NewProfileUsecase(users, new(TxManagerMock))

	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:           1,
		PasswordHash: hashPassword(t, "password123"),
	}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("newpassword")) == nil
	})).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, int64(1)).Return(nil)

	err := uc.ChangePassword(ctx, 1, usecase.ChangePasswordInput{
		CurrentPassword: "password123",
		NewPassword:     "newpassword",
	})
	assert.NoError(t, err)

	users.AssertExpectations(t)
}

func TestProfileUsecase_ChangePassword_TooShort(t *testing.T) {
	uc := usecase.NewProfileUsecase(new(UserRepoMock), new(TxManagerMock))

	err := uc.ChangePassword(context.Background(), 1, usecase.ChangePasswordInput{
		CurrentPassword: "password123",
		NewPassword:     "short",
	})
	assertErrContains(t, err, "at least 8 characters")
}

func TestProfileUsecase_DeleteAccount_WrongPassword(t *testing.T) {
	ctx := context.Background()

	users := new(UserRepoMock)
	tx := new(TxManagerMock)
	uc := usecase.NewProfileUsecase(users, tx)

	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:           1,
		PasswordHash: hashPassword(t, "password123"),
	}, nil)

	err := uc.DeleteAccount(ctx, 1, "wrong")
	assertErrContains(t, err, "wrong password")

	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

// 関連データをひとつのトランザクションで全部消す
func TestProfileUsecase_DeleteAccount_CascadesWithinTx(t *testing.T) {
	ctx := context.Background()

	users := new(UserRepoMock)
	reviews := new(ReviewRepoMock)
	carts := new(CartRepoMock)
	books := new(BookRepoMock)
	orderItems := new(OrderItemRepoMock)
	orders := new(OrderRepoMock)
	rts := new(RefreshTokenRepoMock)
	txUsers := new(UserRepoMock)

	tx := &TxManagerMock{Repos: &TxReposMock{
		orders:        orders,
		orderItems:    orderItems,
		carts:         carts,
		cartItems:     new(CartItemRepoMock),
		books:         books,
		reviews:       reviews,
		users:         txUsers,
		refreshTokens: rts,
	}}
	uc := usecase.NewProfileUsecase(users, tx)

	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:           1,
		PasswordHash: hashPassword(t, "password123"),
	}, nil)

	tx.On("WithinTx", mock.Anything).Return(nil)
	reviews.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)
	carts.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)
	books.On("DeleteBySellerID", mock.Anything, int64(1)).Return(nil)
	orderItems.On("DeleteAllByBuyerID", mock.Anything, int64(1)).Return(nil)
	orders.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)
	rts.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)
	txUsers.On("Delete", mock.Anything, int64(1)).Return(nil)

	err := uc.DeleteAccount(ctx, 1, "password123")
	assert.NoError(t, err)

	reviews.AssertExpectations(t)
	books.AssertExpectations(t)
	txUsers.AssertExpectations(t)
}

// =====================
// Admin user management
// =====================

func TestAdminUserUsecase_SetActive_CannotDisableYourself(t *testing.T) {
	users := new(UserRepoMock)
	uc := usecase.NewAdminUserUsecase(users, new(AdminActionRepoMock), new(TxManagerMock), newTestAudit(new(AdminActionRepoMock)))

	err := uc.SetActive(context.Background(), 100, 100, false)
	assertErrContains(t, err, "cannot disable yourself")

	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// 停止時はtoken_versionも上げて既存JWTを落とす
func TestAdminUserUsecase_SetActive_DisableBumpsTokenVersion(t *testing.T) {
	ctx := context.Background()

	users := new(UserRepoMock)
	actions := new(AdminActionRepoMock)
	uc := usecase.NewAdminUserUsecase(users, actions, new(TxManagerMock), newTestAudit(actions))

	users.On("FindByID", mock.Anything, int64(2)).Return(&model.User{ID: 2, IsActive: true}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return !u.IsActive
	})).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, int64(2)).Return(nil)

	actions.On("Create", mock.Anything, mock.MatchedBy(func(a model.AdminAction) bool {
		return a.ActionType == model.AdminActionUpdateUser && a.TargetID == 2
	})).Return(nil)

	err := uc.SetActive(ctx, 100, 2, false)
	assert.NoError(t, err)

	users.AssertExpectations(t)
	actions.AssertExpectations(t)
}

func TestAdminUserUsecase_SetActive_EnableKeepsTokenVersion(t *testing.T) {
	ctx := context.Background()

	users := new(UserRepoMock)
	actions := new(AdminActionRepoMock)
	uc := usecase.NewAdminUserUsecase(users, actions, new(TxManagerMock), newTestAudit(actions))

	users.On("FindByID", mock.Anything, int64(2)).Return(&model.User{ID: 2, IsActive: false}, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	actions.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.SetActive(ctx, 100, 2, true)
	assert.NoError(t, err)

	users.AssertNotCalled(t, "IncrementTokenVersion", mock.Anything, int64(2))
}

func TestAdminUserUsecase_Delete_CannotDeleteYourself(t *testing.T) {
	uc := usecase.NewAdminUserUsecase(new(UserRepoMock), new(AdminActionRepoMock), new(TxManagerMock), newTestAudit(new(AdminActionRepoMock)))

	err := uc.Delete(context.Background(), 100, 100)
	assertErrContains(t, err, "cannot delete yourself")
}

func TestAdminUserUsecase_ListActions_InvalidLimit(t *testing.T) {
	uc := usecase.NewAdminUserUsecase(new(UserRepoMock), new(AdminActionRepoMock), new(TxManagerMock), newTestAudit(new(AdminActionRepoMock)))

	_, err := uc.ListActions(context.Background(), repo.AdminActionFilter{Limit: 0})
	assertErrContains(t, err, "invalid limit")

	_, err = uc.ListActions(context.Background(), repo.AdminActionFilter{Limit: 500})
	assertErrContains(t, err, "invalid limit")
}
