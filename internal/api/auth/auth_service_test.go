package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/config"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) CreateUser(ctx context.Context, user *types.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

var testJWT = config.JWTConfig{
	SecretKey:      "test-secret",
	Issuer:         "linksphere",
	Audience:       "linksphere-web",
	AccessTokenTTL: time.Hour,
}

func setupService(repo AuthRepo, maxFailed int) *AuthServiceImpl {
	s := NewAuthService(repo, testJWT, config.AuthConfig{MaxFailedLogins: maxFailed, LockoutWindow: time.Minute}, discard)
	s.hashCost = bcrypt.MinCost
	return s
}

func storedUser(t *testing.T, password string) *types.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := newUser()
	u.PasswordHash = string(hash)
	return u
}

func parseClaims(t *testing.T, token string) *types.Claims {
	t.Helper()
	claims := &types.Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWT.SecretKey), nil
	})
	require.NoError(t, err)
	return claims
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates user and returns token", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *types.User) bool {
			return u.Email == "alice@x.com" && u.Name == "Alice" &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")) == nil
		})).Return(nil).Once()

		resp, err := setupService(repo, 5).Register(context.Background(), types.RegisterRequest{
			Name: " Alice ", Email: "Alice@X.com", Password: "secret1",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice@x.com", resp.User.Email)

		claims := parseClaims(t, resp.Token)
		assert.Equal(t, resp.User.ID.String(), claims.UserID)
		assert.Equal(t, "linksphere", claims.Issuer)
		assert.Contains(t, claims.Audience, "linksphere-web")
		repo.AssertExpectations(t)
	})

	tests := []struct {
		name string
		req  types.RegisterRequest
	}{
		{"missing name", types.RegisterRequest{Email: "a@x.com", Password: "secret1"}},
		{"missing email", types.RegisterRequest{Name: "A", Password: "secret1"}},
		{"invalid email", types.RegisterRequest{Name: "A", Email: "ax.com", Password: "secret1"}},
		{"short password", types.RegisterRequest{Name: "A", Email: "a@x.com", Password: "12345"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockAuthRepo)
			_, err := setupService(repo, 5).Register(context.Background(), tc.req)
			assert.True(t, errors.Is(err, types.ErrValidation))
			repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("CreateUser", mock.Anything, mock.Anything).Return(types.ErrConflict).Once()

		_, err := setupService(repo, 5).Register(context.Background(), types.RegisterRequest{
			Name: "A", Email: "a@x.com", Password: "secret1",
		})
		assert.True(t, errors.Is(err, types.ErrConflict))
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		u := storedUser(t, "secret1")
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "a@x.com").Return(u, nil).Once()

		resp, err := setupService(repo, 5).Login(context.Background(), types.LoginRequest{Email: "A@x.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, u.ID, resp.User.ID)
		assert.Equal(t, u.ID.String(), parseClaims(t, resp.Token).UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "a@x.com").Return(storedUser(t, "secret1"), nil).Once()

		_, err := setupService(repo, 5).Login(context.Background(), types.LoginRequest{Email: "a@x.com", Password: "nope"})
		assert.True(t, errors.Is(err, types.ErrUnauthenticated))
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "z@x.com").Return(nil, types.ErrNotFound).Once()

		_, err := setupService(repo, 5).Login(context.Background(), types.LoginRequest{Email: "z@x.com", Password: "secret1"})
		assert.True(t, errors.Is(err, types.ErrUnauthenticated))
	})

	t.Run("store failure is not masked", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "a@x.com").Return(nil, types.ErrStore).Once()

		_, err := setupService(repo, 5).Login(context.Background(), types.LoginRequest{Email: "a@x.com", Password: "secret1"})
		assert.True(t, errors.Is(err, types.ErrStore))
	})

	t.Run("locks out after repeated failures", func(t *testing.T) {
		u := storedUser(t, "secret1")
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "a@x.com").Return(u, nil).Twice()
		s := setupService(repo, 2)

		for i := 0; i < 2; i++ {
			_, err := s.Login(context.Background(), types.LoginRequest{Email: "a@x.com", Password: "wrong"})
			require.True(t, errors.Is(err, types.ErrUnauthenticated))
		}

		_, err := s.Login(context.Background(), types.LoginRequest{Email: "a@x.com", Password: "secret1"})
		assert.True(t, errors.Is(err, types.ErrTooManyAttempts))
		repo.AssertNumberOfCalls(t, "GetUserByEmail", 2)
	})

	t.Run("success resets the counter", func(t *testing.T) {
		u := storedUser(t, "secret1")
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "a@x.com").Return(u, nil)
		s := setupService(repo, 2)

		_, err := s.Login(context.Background(), types.LoginRequest{Email: "a@x.com", Password: "wrong"})
		require.Error(t, err)
		_, err = s.Login(context.Background(), types.LoginRequest{Email: "a@x.com", Password: "secret1"})
		require.NoError(t, err)
		_, err = s.Login(context.Background(), types.LoginRequest{Email: "a@x.com", Password: "wrong"})
		assert.True(t, errors.Is(err, types.ErrUnauthenticated))
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := setupService(new(MockAuthRepo), 5).Login(context.Background(), types.LoginRequest{Email: "a@x.com"})
		assert.True(t, errors.Is(err, types.ErrValidation))
	})
}
