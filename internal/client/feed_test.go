package client

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

type MockPostsAPI struct {
	mock.Mock
}

func (m *MockPostsAPI) ListPosts(ctx context.Context) ([]types.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Post), args.Error(1)
}

func (m *MockPostsAPI) CreatePost(ctx context.Context, text string, image *types.Blob) (*types.Post, error) {
	args := m.Called(ctx, text, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Post), args.Error(1)
}

func (m *MockPostsAPI) EditPost(ctx context.Context, postID uuid.UUID, text *string, image *types.Blob) (*types.Post, error) {
	args := m.Called(ctx, postID, text, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Post), args.Error(1)
}

func (m *MockPostsAPI) ToggleLike(ctx context.Context, postID uuid.UUID) (*types.LikeResult, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LikeResult), args.Error(1)
}

func (m *MockPostsAPI) DeletePost(ctx context.Context, postID uuid.UUID) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

func signedIn(u *types.UserView) *Session {
	s := NewSession()
	s.Populate("tok", u)
	return s
}

func feedPost(author *types.UserView, text string) types.Post {
	return types.Post{
		ID:     uuid.New(),
		Author: types.AuthorSummary{ID: author.ID, Name: author.Name},
		Text:   text,
		Likes:  []uuid.UUID{},
	}
}

var (
	alice = &types.UserView{ID: uuid.New(), Name: "Alice"}
	bob   = &types.UserView{ID: uuid.New(), Name: "Bob"}
)

func TestDraft_StageImage(t *testing.T) {
	t.Run("png renders a data url preview", func(t *testing.T) {
		var d Draft
		require.NoError(t, d.StageImage(pngBytes, "a.png"))

		assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngBytes), d.Preview)
		require.NotNil(t, d.Image)
		assert.Equal(t, "image/png", d.Image.ContentType)
		assert.Equal(t, "a.png", d.Image.Filename)
	})

	t.Run("non image rejected and draft untouched", func(t *testing.T) {
		d := Draft{Text: "keep"}
		err := d.StageImage([]byte("just some text"), "a.txt")

		assert.True(t, errors.Is(err, types.ErrValidation))
		assert.Nil(t, d.Image)
		assert.Empty(t, d.Preview)
		assert.Equal(t, "keep", d.Text)
	})

	t.Run("clear image keeps text", func(t *testing.T) {
		d := Draft{Text: "t"}
		require.NoError(t, d.StageImage(pngBytes, "a.png"))
		d.ClearImage()
		assert.Nil(t, d.Image)
		assert.Empty(t, d.Preview)
		assert.Equal(t, "t", d.Text)
	})
}

func TestFeedView_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("create prepends and clears the draft", func(t *testing.T) {
		api := new(MockPostsAPI)
		old := feedPost(bob, "older")
		created := feedPost(alice, "hello")
		v := NewFeedView(api, signedIn(alice))
		v.Posts = []types.Post{old}
		v.Draft.Text = "hello"
		require.NoError(t, v.Draft.StageImage(pngBytes, "a.png"))

		api.On("CreatePost", ctx, "hello", mock.MatchedBy(func(b *types.Blob) bool { return b != nil && b.Filename == "a.png" })).
			Return(&created, nil).Once()

		require.NoError(t, v.Submit(ctx))
		assert.Equal(t, []types.Post{created, old}, v.Posts)
		assert.Equal(t, Draft{}, v.Draft)
		assert.NoError(t, v.Err)
		api.AssertExpectations(t)
	})

	t.Run("failure keeps the draft and sets Err", func(t *testing.T) {
		api := new(MockPostsAPI)
		v := NewFeedView(api, signedIn(alice))
		v.Draft.Text = "hello"
		require.NoError(t, v.Draft.StageImage(pngBytes, "a.png"))
		staged := v.Draft

		uploadErr := &APIError{Status: 502, Message: "Image upload failed"}
		api.On("CreatePost", ctx, "hello", mock.Anything).Return(nil, uploadErr).Once()

		err := v.Submit(ctx)
		assert.True(t, errors.Is(err, types.ErrUpload))
		assert.Equal(t, staged, v.Draft)
		assert.Equal(t, err, v.Err)
		assert.Empty(t, v.Posts)
	})

	t.Run("empty create never reaches the api", func(t *testing.T) {
		api := new(MockPostsAPI)
		v := NewFeedView(api, signedIn(alice))
		v.Draft.Text = ""
		v.Draft.Preview = "data:image/png;base64,AA=="

		err := v.Submit(ctx)
		assert.True(t, errors.Is(err, types.ErrValidation))
		assert.Equal(t, "data:image/png;base64,AA==", v.Draft.Preview)
		api.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("edit replaces in place without an image unless staged", func(t *testing.T) {
		api := new(MockPostsAPI)
		first := feedPost(alice, "one")
		second := feedPost(alice, "two")
		v := NewFeedView(api, signedIn(alice))
		v.Posts = []types.Post{first, second}

		v.BeginEdit(second)
		v.Draft.Text = "updated"
		edited := second
		edited.Text = "updated"
		api.On("EditPost", ctx, second.ID, mock.MatchedBy(func(s *string) bool { return s != nil && *s == "updated" }), (*types.Blob)(nil)).
			Return(&edited, nil).Once()

		require.NoError(t, v.Submit(ctx))
		assert.Equal(t, []types.Post{first, edited}, v.Posts)
		assert.False(t, v.Draft.IsEditing())
		api.AssertExpectations(t)
	})
}

func TestFeedView_ToggleLikeUsesServerCopy(t *testing.T) {
	ctx := context.Background()
	api := new(MockPostsAPI)
	p := feedPost(alice, "hello")
	v := NewFeedView(api, signedIn(bob))
	v.Posts = []types.Post{p}

	server := p
	server.Likes = []uuid.UUID{bob.ID}
	api.On("ToggleLike", ctx, p.ID).Return(&types.LikeResult{Post: &server, Liked: true}, nil).Once()

	require.NoError(t, v.ToggleLike(ctx, p.ID))
	assert.Equal(t, []uuid.UUID{bob.ID}, v.Posts[0].Likes)
	assert.True(t, v.Liked(v.Posts[0]))
	assert.False(t, v.IsOwner(v.Posts[0]))
}

func TestFeedView_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes on success", func(t *testing.T) {
		api := new(MockPostsAPI)
		p := feedPost(alice, "bye")
		keep := feedPost(bob, "stay")
		v := NewFeedView(api, signedIn(alice))
		v.Posts = []types.Post{p, keep}
		api.On("DeletePost", ctx, p.ID).Return(nil).Once()

		require.NoError(t, v.Delete(ctx, p.ID))
		assert.Equal(t, []types.Post{keep}, v.Posts)
	})

	t.Run("forbidden leaves list intact", func(t *testing.T) {
		api := new(MockPostsAPI)
		p := feedPost(alice, "mine")
		v := NewFeedView(api, signedIn(bob))
		v.Posts = []types.Post{p}
		api.On("DeletePost", ctx, p.ID).Return(&APIError{Status: 403, Message: "Not authorized"}).Once()

		err := v.Delete(ctx, p.ID)
		assert.True(t, errors.Is(err, types.ErrForbidden))
		assert.Len(t, v.Posts, 1)
	})
}

func TestFeedView_Load(t *testing.T) {
	ctx := context.Background()
	api := new(MockPostsAPI)
	v := NewFeedView(api, NewSession())
	v.Posts = []types.Post{feedPost(bob, "stale")}
	fresh := []types.Post{feedPost(alice, "new")}
	api.On("ListPosts", ctx).Return(fresh, nil).Once()

	require.NoError(t, v.Load(ctx))
	assert.Equal(t, fresh, v.Posts)
	assert.False(t, v.Liked(fresh[0]))
	assert.False(t, v.IsOwner(fresh[0]))
}
