package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"hyperlens/internal/domain"
	"hyperlens/internal/security"
	"hyperlens/internal/service"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestRegister(t *testing.T) {
	tokenSvc := security.NewTokenService("secret", time.Hour)
	hasher := security.NewPasswordHasher(4) // low cost for tests

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc := service.NewAuthService(mockRepo, tokenSvc, hasher)

		mockRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, nil)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "new@example.com" && u.Role == domain.RoleUser
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = "u1"
		}).Return(nil)

		resp, err := svc.Register(context.Background(), service.RegisterInput{
			Name:     "New User",
			Email:    "New@Example.com",
			Password: "Password1!",
		})
		assert.NoError(t, err)
		assert.NotNil(t, resp)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.Equal(t, "new@example.com", resp.User.Email)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc := service.NewAuthService(mockRepo, tokenSvc, hasher)

		existing := &domain.User{ID: "u1", Email: "existing@example.com"}
		mockRepo.On("GetByEmail", mock.Anything, "existing@example.com").Return(existing, nil)

		resp, err := svc.Register(context.Background(), service.RegisterInput{
			Name:     "Someone",
			Email:    "existing@example.com",
			Password: "Password1!",
		})
		assert.Error(t, err)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("BadRole", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc := service.NewAuthService(mockRepo, tokenSvc, hasher)

		resp, err := svc.Register(context.Background(), service.RegisterInput{
			Name:     "Someone",
			Email:    "someone@example.com",
			Password: "Password1!",
			Role:     "admin",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Nil(t, resp)
	})
}

func TestLogin(t *testing.T) {
	tokenSvc := security.NewTokenService("secret", time.Hour)
	hasher := security.NewPasswordHasher(4)

	hashed, err := hasher.Hash("Password1!")
	assert.NoError(t, err)
	user := &domain.User{
		ID:             "u1",
		Email:          "user@example.com",
		HashedPassword: hashed,
		Role:           domain.RoleUser,
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc := service.NewAuthService(mockRepo, tokenSvc, hasher)
		mockRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)

		resp, err := svc.Login(context.Background(), service.LoginInput{
			Email:    "user@example.com",
			Password: "Password1!",
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc := service.NewAuthService(mockRepo, tokenSvc, hasher)
		mockRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)

		resp, err := svc.Login(context.Background(), service.LoginInput{
			Email:    "user@example.com",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Nil(t, resp)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc := service.NewAuthService(mockRepo, tokenSvc, hasher)
		mockRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

		resp, err := svc.Login(context.Background(), service.LoginInput{
			Email:    "nobody@example.com",
			Password: "Password1!",
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Nil(t, resp)
	})
}
