package usecase_test

import (
	"context"
	"testing"
	"time"

	"bookmarket/internal/config"
	"bookmarket/internal/domain/model"
	"bookmarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// validatorは別テストで検証するので素通しのstubを使う
type validatorStub struct{ err error }

func (v validatorStub) ValidateRegister(ctx context.Context, username string, email string, password string) error {
	return v.err
}

func (v validatorStub) ValidateLogin(ctx context.Context, email string, password string) error {
	return v.err
}

func (v validatorStub) ValidateRefresh(ctx context.Context, refreshToken string, userAgent string) error {
	return v.err
}

func newAuthUC(users *UserRepoMock, rts *RefreshTokenRepoMock) *usecase.AuthUsecase {
	cfg := config.Config{JWTSecret: "test-secret"}
	return usecase.NewAuthUsecase(cfg, users, rts, validatorStub{})
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

func TestAuthUsecase_Register_Success(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthUC(users, new(RefreshTokenRepoMock))

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		//平文は保存しない
		return u.Username == "alice" && u.PasswordHash != "password123" && u.Role == model.RoleCustomer && u.IsActive
	})).Return(nil)

	dto, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	assert.NoError(t, err)
	assert.Equal(t, "alice", dto.Username)
	assert.Equal(t, "CUSTOMER", dto.Role)

	users.AssertExpectations(t)
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	uc := newAuthUC(users, rts)

	users.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "password123"),
		Role:         model.RoleCustomer,
		IsActive:     true,
	}, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	rts.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		//DBには平文ではなくhashを保存する
		return rt.UserID == 1 && rt.TokenHash != "" && rt.ExpiresAt.After(time.Now())
	})).Return(nil)

	res, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}, "test-agent")
	assert.NoError(t, err)
	assert.NotEmpty(t, res.Body.Token.AccessToken)
	assert.NotEmpty(t, res.RefreshTokenPlain)
	assert.Equal(t, 900, res.Body.Token.ExpiresIn)

	rts.AssertExpectations(t)
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	uc := newAuthUC(users, rts)

	users.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
		ID:           1,
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     true,
	}, nil)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	}, "")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	rts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthUC(users, new(RefreshTokenRepoMock))

	users.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
		ID:           1,
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     false,
	}, nil)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}, "")
	assert.ErrorIs(t, err, usecase.ErrForbidden)
}

// used済みtokenの再利用はreplay扱い。全tokenを落とす。
func TestAuthUsecase_Refresh_ReplayDeletesAllTokens(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	uc := newAuthUC(users, rts)

	used := time.Now().Add(-time.Minute)
	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		ExpiresAt: time.Now().Add(time.Hour),
		UsedAt:    &used,
	}, nil)
	rts.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)

	_, err := uc.Refresh(context.Background(), "stolen-token", "test-agent")
	assert.ErrorIs(t, err, usecase.ErrSecurityIncident)

	rts.AssertExpectations(t)
}

func TestAuthUsecase_Refresh_UserAgentMismatch(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	uc := newAuthUC(users, rts)

	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		UserAgent: "agent-a",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	rts.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)

	_, err := uc.Refresh(context.Background(), "token", "agent-b")
	assert.ErrorIs(t, err, usecase.ErrSecurityIncident)

	rts.AssertExpectations(t)
}

func TestAuthUsecase_Refresh_Expired(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	uc := newAuthUC(users, rts)

	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		ExpiresAt: time.Now().Add(-time.Hour),
	}, nil)
	rts.On("DeleteByID", mock.Anything, "rt-1").Return(nil)

	_, err := uc.Refresh(context.Background(), "token", "")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	rts.AssertExpectations(t)
}

func TestAuthUsecase_Refresh_RotatesToken(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	uc := newAuthUC(users, rts)

	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		UserAgent: "test-agent",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, IsActive: true}, nil)

	//旧tokenはusedに、新tokenが保存される
	rts.On("MarkUsed", mock.Anything, "rt-1", mock.Anything).Return(nil)
	rts.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		return rt.ID != "rt-1" && rt.UserID == 1
	})).Return(nil)

	res, err := uc.Refresh(context.Background(), "token", "test-agent")
	assert.NoError(t, err)
	assert.NotEmpty(t, res.Body.AccessToken)
	assert.NotEmpty(t, res.RefreshTokenPlain)

	rts.AssertExpectations(t)
}

func TestAuthUsecase_Logout_UnknownToken(t *testing.T) {
	rts := new(RefreshTokenRepoMock)
	uc := newAuthUC(new(UserRepoMock), rts)

	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(nil, nil)

	err := uc.Logout(context.Background(), "unknown")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
}

func TestAuthUsecase_ForceLogout(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	uc := newAuthUC(users, rts)

	users.On("IncrementTokenVersion", mock.Anything, int64(1)).Return(nil)
	rts.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)
	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, TokenVersion: 3}, nil)

	res, err := uc.ForceLogout(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), res.UserID)
	assert.Equal(t, 3, res.NewTokenVersion)

	users.AssertExpectations(t)
	rts.AssertExpectations(t)
}
