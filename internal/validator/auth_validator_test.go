package validator_test

import (
	"context"
	"testing"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
	"bookmarket/internal/usecase"
	"bookmarket/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	panic("not used in validator tests")
}

func (m *userRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	panic("not used in validator tests")
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	panic("not used in validator tests")
}

func (m *userRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	panic("not used in validator tests")
}

func (m *userRepoMock) List(ctx context.Context, f repo.UserListFilter) ([]model.User, int64, error) {
	panic("not used in validator tests")
}

func (m *userRepoMock) Delete(ctx context.Context, userID int64) error {
	panic("not used in validator tests")
}

func newValidator(users *userRepoMock) usecase.AuthValidator {
	return validator.NewAuthValidator(users)
}

func TestValidateRegister_OK(t *testing.T) {
	users := new(userRepoMock)
	v := newValidator(users)

	users.On("FindByUsername", mock.Anything, "alice").Return(nil, repo.ErrNotFound)
	users.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, repo.ErrNotFound)

	err := v.ValidateRegister(context.Background(), "alice", "alice@example.com", "password123")
	assert.NoError(t, err)
}

func TestValidateRegister_RequiredFields(t *testing.T) {
	v := newValidator(new(userRepoMock))

	assert.ErrorIs(t, v.ValidateRegister(context.Background(), "", "a@b.com", "password123"), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateRegister(context.Background(), "alice", "", "password123"), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateRegister(context.Background(), "alice", "a@b.com", ""), usecase.ErrValidation)
}

func TestValidateRegister_UsernameLength(t *testing.T) {
	v := newValidator(new(userRepoMock))

	//2文字は短すぎる
	assert.ErrorIs(t, v.ValidateRegister(context.Background(), "ab", "a@b.com", "password123"), usecase.ErrValidation)
}

func TestValidateRegister_EmailFormat(t *testing.T) {
	v := newValidator(new(userRepoMock))

	for _, email := range []string{"not-an-email", "a@b", "a b@c.com", "@example.com"} {
		assert.ErrorIs(t, v.ValidateRegister(context.Background(), "alice", email, "password123"), usecase.ErrValidation, email)
	}
}

func TestValidateRegister_PasswordTooShort(t *testing.T) {
	v := newValidator(new(userRepoMock))

	assert.ErrorIs(t, v.ValidateRegister(context.Background(), "alice", "a@b.com", "short"), usecase.ErrValidation)
}

func TestValidateRegister_DuplicateUsername(t *testing.T) {
	users := new(userRepoMock)
	v := newValidator(users)

	users.On("FindByUsername", mock.Anything, "alice").Return(&model.User{ID: 1}, nil)

	err := v.ValidateRegister(context.Background(), "alice", "alice@example.com", "password123")
	assert.ErrorIs(t, err, usecase.ErrConflict)
}

func TestValidateRegister_DuplicateEmail(t *testing.T) {
	users := new(userRepoMock)
	v := newValidator(users)

	users.On("FindByUsername", mock.Anything, "alice").Return(nil, repo.ErrNotFound)
	users.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{ID: 1}, nil)

	err := v.ValidateRegister(context.Background(), "alice", "alice@example.com", "password123")
	assert.ErrorIs(t, err, usecase.ErrConflict)
}

func TestValidateLogin(t *testing.T) {
	v := newValidator(new(userRepoMock))

	assert.NoError(t, v.ValidateLogin(context.Background(), "alice@example.com", "password123"))
	assert.ErrorIs(t, v.ValidateLogin(context.Background(), "", "password123"), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateLogin(context.Background(), "not-an-email", "password123"), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateLogin(context.Background(), "alice@example.com", ""), usecase.ErrValidation)
}

func TestValidateRefresh(t *testing.T) {
	v := newValidator(new(userRepoMock))

	assert.NoError(t, v.ValidateRefresh(context.Background(), "token", "agent"))
	assert.ErrorIs(t, v.ValidateRefresh(context.Background(), "  ", "agent"), usecase.ErrUnauthorized)
}
