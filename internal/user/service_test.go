package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"fulfillment-be/internal/apperr"
	"fulfillment-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User, maxActiveOrders int) error {
	args := m.Called(ctx, u, maxActiveOrders)
	if args.Error(0) == nil && u.ID == "" {
		u.ID = "user-1"
	}
	return args.Error(0)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

type stubIssuer struct {
	err error
}

func (s stubIssuer) Issue(userID, role string, ttl time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-" + userID + "-" + role, nil
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	stored := &User{ID: "u-1", Email: "ada@example.com", PasswordHash: hash, Role: utils.RoleOfficer, Active: true}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(stored, nil)
		svc := NewService(repo, stubIssuer{})

		sess, err := svc.Login(ctx, "  ADA@example.com ", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, "token-u-1-OFFICER", sess.Token)
		assert.True(t, sess.ExpiresAt.After(time.Now()))
		assert.Equal(t, "u-1", sess.User.ID)
		repo.AssertExpectations(t)
	})

	t.Run("Wrong password", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(stored, nil)
		svc := NewService(repo, stubIssuer{})

		_, err := svc.Login(ctx, "ada@example.com", "battery-staple")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown email looks like a wrong password", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", ctx, "who@example.com").Return(nil, ErrUserNotFound)
		svc := NewService(repo, stubIssuer{})

		_, err := svc.Login(ctx, "who@example.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Inactive account", func(t *testing.T) {
		inactive := *stored
		inactive.Active = false
		repo := new(MockRepository)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(&inactive, nil)
		svc := NewService(repo, stubIssuer{})

		_, err := svc.Login(ctx, "ada@example.com", "correct-horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Token failure", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(stored, nil)
		svc := NewService(repo, stubIssuer{err: errors.New("no secret")})

		_, err := svc.Login(ctx, "ada@example.com", "correct-horse")
		assert.EqualError(t, err, "no secret")
	})
}

func TestService_CreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("Success hashes the password", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", ctx, mock.AnythingOfType("*user.User"), 3).Return(nil)
		svc := NewService(repo, stubIssuer{})

		u, err := svc.CreateAccount(ctx, CreateParams{
			Name:            " Bola ",
			Email:           "Bola@Example.com",
			Password:        "long-enough",
			Role:            utils.RoleOfficer,
			MaxActiveOrders: 3,
		})
		require.NoError(t, err)
		assert.Equal(t, "user-1", u.ID)
		assert.Equal(t, "Bola", u.Name)
		assert.Equal(t, "bola@example.com", u.Email)
		assert.True(t, u.Active)
		assert.NotEqual(t, "long-enough", u.PasswordHash)
		assert.True(t, CheckPasswordHash("long-enough", u.PasswordHash))
		repo.AssertExpectations(t)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", ctx, mock.Anything, 0).Return(ErrEmailExists)
		svc := NewService(repo, stubIssuer{})

		_, err := svc.CreateAccount(ctx, CreateParams{Name: "A", Email: "a@example.com", Password: "long-enough", Role: utils.RoleAdmin})
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	tests := []struct {
		name   string
		params CreateParams
	}{
		{"Missing name", CreateParams{Email: "a@example.com", Password: "long-enough", Role: utils.RoleAdmin}},
		{"Bad email", CreateParams{Name: "A", Email: "not-an-email", Password: "long-enough", Role: utils.RoleAdmin}},
		{"Short password", CreateParams{Name: "A", Email: "a@example.com", Password: "short", Role: utils.RoleAdmin}},
		{"Customer role", CreateParams{Name: "A", Email: "a@example.com", Password: "long-enough", Role: "CUSTOMER"}},
		{"Negative capacity", CreateParams{Name: "A", Email: "a@example.com", Password: "long-enough", Role: utils.RoleOfficer, MaxActiveOrders: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewService(repo, stubIssuer{})

			_, err := svc.CreateAccount(ctx, tt.params)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("secret-password", hash))
	assert.False(t, CheckPasswordHash("other-password", hash))
	assert.False(t, CheckPasswordHash("secret-password", "not-a-hash"))
}
