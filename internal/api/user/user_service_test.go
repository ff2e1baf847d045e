package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/media"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, fields ProfileFields, at time.Time) (*types.User, error) {
	args := m.Called(ctx, userID, fields, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, blob *types.Blob, folder string) (string, error) {
	args := m.Called(ctx, blob, folder)
	return args.String(0), args.Error(1)
}

func ptr(s string) *string { return &s }

func sampleUser() *types.User {
	return &types.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$secret",
		Bio:          "hi",
		ImageURL:     "https://cdn/old.png",
	}
}

func TestUserService_GetSelf(t *testing.T) {
	t.Run("sanitized view", func(t *testing.T) {
		u := sampleUser()
		repo := new(MockUserRepo)
		repo.On("GetUserByID", mock.Anything, u.ID).Return(u, nil).Once()

		got, err := NewUserService(repo, new(MockUploader), discard).GetSelf(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, &types.UserView{ID: u.ID, Name: "Alice", Email: "a@x.com", Bio: "hi", ImageURL: "https://cdn/old.png"}, got)
	})

	t.Run("vanished user", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetUserByID", mock.Anything, mock.Anything).Return(nil, types.ErrNotFound).Once()

		_, err := NewUserService(repo, new(MockUploader), discard).GetSelf(context.Background(), uuid.New())
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}

func TestUserService_GetUserByID_NotFound(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("GetUserByID", mock.Anything, mock.Anything).Return(nil, types.ErrNotFound).Once()

	_, err := NewUserService(repo, new(MockUploader), discard).GetUserByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 5, 5, 5, 5, 5, 0, time.UTC)

	newService := func(repo UserRepo, up media.Uploader) *UserServiceImpl {
		s := NewUserService(repo, up, discard)
		s.now = func() time.Time { return fixed }
		return s
	}

	tests := []struct {
		name   string
		params types.UpdateProfileParams
		want   ProfileFields
	}{
		{"name and bio", types.UpdateProfileParams{Name: ptr("Al"), Bio: ptr("new")}, ProfileFields{Name: ptr("Al"), Bio: ptr("new")}},
		{"empty bio is ignored", types.UpdateProfileParams{Name: ptr("Al"), Bio: ptr("")}, ProfileFields{Name: ptr("Al")}},
		{"empty name is ignored", types.UpdateProfileParams{Name: ptr("")}, ProfileFields{}},
		{"nothing sent", types.UpdateProfileParams{}, ProfileFields{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u := sampleUser()
			repo := new(MockUserRepo)
			repo.On("GetUserByID", mock.Anything, u.ID).Return(u, nil).Once()
			repo.On("UpdateProfile", mock.Anything, u.ID, tc.want, fixed).Return(u, nil).Once()

			got, err := newService(repo, new(MockUploader)).UpdateProfile(ctx, u.ID, u.ID, tc.params)
			require.NoError(t, err)
			assert.Equal(t, u.ID, got.ID)
			repo.AssertExpectations(t)
		})
	}

	t.Run("avatar uploaded to users folder", func(t *testing.T) {
		u := sampleUser()
		blob := &types.Blob{Data: []byte("img"), ContentType: "image/png"}
		up := new(MockUploader)
		up.On("Upload", mock.Anything, blob, media.FolderUsers).Return("https://cdn/new.png", nil).Once()
		repo := new(MockUserRepo)
		repo.On("GetUserByID", mock.Anything, u.ID).Return(u, nil).Once()
		repo.On("UpdateProfile", mock.Anything, u.ID, ProfileFields{ImageURL: ptr("https://cdn/new.png")}, fixed).Return(u, nil).Once()

		_, err := newService(repo, up).UpdateProfile(ctx, u.ID, u.ID, types.UpdateProfileParams{Image: blob})
		require.NoError(t, err)
		up.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("other caller is forbidden and nothing written", func(t *testing.T) {
		u := sampleUser()
		up := new(MockUploader)
		repo := new(MockUserRepo)
		repo.On("GetUserByID", mock.Anything, u.ID).Return(u, nil).Once()

		_, err := newService(repo, up).UpdateProfile(ctx, u.ID, uuid.New(), types.UpdateProfileParams{
			Name:  ptr("Mallory"),
			Image: &types.Blob{Data: []byte("x")},
		})

		assert.True(t, errors.Is(err, types.ErrForbidden))
		repo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		up.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing target wins over foreign caller", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetUserByID", mock.Anything, mock.Anything).Return(nil, types.ErrNotFound).Once()

		_, err := newService(repo, new(MockUploader)).UpdateProfile(ctx, uuid.New(), uuid.New(), types.UpdateProfileParams{Name: ptr("x")})
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})

	t.Run("upload failure writes nothing", func(t *testing.T) {
		u := sampleUser()
		up := new(MockUploader)
		up.On("Upload", mock.Anything, mock.Anything, media.FolderUsers).Return("", types.ErrUpload).Once()
		repo := new(MockUserRepo)
		repo.On("GetUserByID", mock.Anything, u.ID).Return(u, nil).Once()

		_, err := newService(repo, up).UpdateProfile(ctx, u.ID, u.ID, types.UpdateProfileParams{
			Name:  ptr("Al"),
			Image: &types.Blob{Data: []byte("x")},
		})

		assert.True(t, errors.Is(err, types.ErrUpload))
		repo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
