package post

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/auth"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) CreatePost(ctx context.Context, authorID uuid.UUID, params types.CreatePostParams) (*types.Post, error) {
	args := m.Called(ctx, authorID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Post), args.Error(1)
}

func (m *MockPostService) ListPosts(ctx context.Context) ([]types.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Post), args.Error(1)
}

func (m *MockPostService) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]types.Post, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Post), args.Error(1)
}

func (m *MockPostService) ToggleLike(ctx context.Context, postID, callerID uuid.UUID) (*types.LikeResult, error) {
	args := m.Called(ctx, postID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LikeResult), args.Error(1)
}

func (m *MockPostService) EditPost(ctx context.Context, postID, callerID uuid.UUID, params types.EditPostParams) (*types.Post, error) {
	args := m.Called(ctx, postID, callerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Post), args.Error(1)
}

func (m *MockPostService) DeletePost(ctx context.Context, postID, callerID uuid.UUID) error {
	return m.Called(ctx, postID, callerID).Error(0)
}

// serve routes req the way the router does, with caller already verified
// unless it is uuid.Nil.
func serve(svc PostService, caller uuid.UUID, req *http.Request) *httptest.ResponseRecorder {
	h := NewHandlerImpl(svc, 1<<20, discard)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if caller != uuid.Nil {
				req = req.WithContext(auth.WithCallerID(req.Context(), caller))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/posts", h.CreatePost)
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/user/{userId}", h.ListPostsByAuthor)
	r.Post("/posts/{id}/like", h.ToggleLike)
	r.Put("/posts/{id}", h.EditPost)
	r.Delete("/posts/{id}", h.DeletePost)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandlerImpl_CreatePost(t *testing.T) {
	t.Run("multipart with image", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("CreatePost", mock.Anything, alice.ID, mock.MatchedBy(func(p types.CreatePostParams) bool {
			return p.Text == "hello" && p.Image != nil && p.Image.ContentType == "image/png"
		})).Return(&types.Post{ID: uuid.New(), Text: "hello", ImageURL: "https://cdn/img1"}, nil).Once()

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("text", "hello"))
		fw, err := mw.CreateFormFile("image", "a.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/posts", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := serve(svc, alice.ID, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"imageUrl":"https://cdn/img1"`)
		svc.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("CreatePost", mock.Anything, alice.ID, types.CreatePostParams{}).
			Return(nil, types.ErrValidation).Once()

		rec := serve(svc, alice.ID, jsonRequest(http.MethodPost, "/posts", `{}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upload failure", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("CreatePost", mock.Anything, alice.ID, mock.Anything).Return(nil, types.ErrUpload).Once()

		rec := serve(svc, alice.ID, jsonRequest(http.MethodPost, "/posts", `{"text":"x"}`))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("no caller", func(t *testing.T) {
		rec := serve(new(MockPostService), uuid.Nil, jsonRequest(http.MethodPost, "/posts", `{"text":"x"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandlerImpl_ListPosts(t *testing.T) {
	svc := new(MockPostService)
	svc.On("ListPosts", mock.Anything).Return([]types.Post{}, nil).Once()

	rec := serve(svc, uuid.Nil, httptest.NewRequest(http.MethodGet, "/posts", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandlerImpl_ListPostsByAuthor(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("ListPostsByAuthor", mock.Anything, bob.ID).Return([]types.Post{{ID: uuid.New(), Author: bob}}, nil).Once()

		rec := serve(svc, uuid.Nil, httptest.NewRequest(http.MethodGet, "/posts/user/"+bob.ID.String(), nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var posts []types.Post
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
		assert.Len(t, posts, 1)
	})

	t.Run("bad id", func(t *testing.T) {
		rec := serve(new(MockPostService), uuid.Nil, httptest.NewRequest(http.MethodGet, "/posts/user/xyz", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerImpl_ToggleLike(t *testing.T) {
	postID := uuid.New()
	svc := new(MockPostService)
	svc.On("ToggleLike", mock.Anything, postID, bob.ID).
		Return(&types.LikeResult{Post: &types.Post{ID: postID, Likes: []uuid.UUID{bob.ID}}, Liked: true}, nil).Once()

	rec := serve(svc, bob.ID, httptest.NewRequest(http.MethodPost, "/posts/"+postID.String()+"/like", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var res types.LikeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Liked)
	assert.Equal(t, []uuid.UUID{bob.ID}, res.Post.Likes)
}

func TestHandlerImpl_EditPost(t *testing.T) {
	postID := uuid.New()

	tests := []struct {
		name     string
		body     string
		wantText *string
	}{
		{"explicit empty", `{"text":""}`, ptr("")},
		{"omitted", `{}`, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockPostService)
			svc.On("EditPost", mock.Anything, postID, alice.ID, types.EditPostParams{Text: tc.wantText}).
				Return(&types.Post{ID: postID}, nil).Once()

			rec := serve(svc, alice.ID, jsonRequest(http.MethodPut, "/posts/"+postID.String(), tc.body))

			assert.Equal(t, http.StatusOK, rec.Code)
			svc.AssertExpectations(t)
		})
	}

	t.Run("forbidden", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("EditPost", mock.Anything, postID, bob.ID, mock.Anything).Return(nil, types.ErrForbidden).Once()

		rec := serve(svc, bob.ID, jsonRequest(http.MethodPut, "/posts/"+postID.String(), `{"text":"x"}`))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandlerImpl_DeletePost(t *testing.T) {
	postID := uuid.New()

	t.Run("deleted", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("DeletePost", mock.Anything, postID, alice.ID).Return(nil).Once()

		rec := serve(svc, alice.ID, httptest.NewRequest(http.MethodDelete, "/posts/"+postID.String(), nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":"Post deleted"}`, rec.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("DeletePost", mock.Anything, postID, alice.ID).Return(types.ErrNotFound).Once()

		rec := serve(svc, alice.ID, httptest.NewRequest(http.MethodDelete, "/posts/"+postID.String(), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Post not found")
	})

	t.Run("unparsable id", func(t *testing.T) {
		rec := serve(new(MockPostService), alice.ID, httptest.NewRequest(http.MethodDelete, "/posts/42", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
