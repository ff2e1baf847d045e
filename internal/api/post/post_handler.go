package post

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/auth"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

const (
	fieldText   = "text"
	msgNotFound = "Post not found"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CreatePost(w http.ResponseWriter, r *http.Request)
	ListPosts(w http.ResponseWriter, r *http.Request)
	ListPostsByAuthor(w http.ResponseWriter, r *http.Request)
	ToggleLike(w http.ResponseWriter, r *http.Request)
	EditPost(w http.ResponseWriter, r *http.Request)
	DeletePost(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	postService    PostService
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewHandlerImpl(postService PostService, maxUploadBytes int64, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		postService:    postService,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreatePost godoc
// @Summary      Create Post
// @Description  Creates a post for the caller. An attached image is uploaded before anything is stored.
// @Tags         Posts
// @Accept       multipart/form-data
// @Produce      json
// @Param        text  formData string true  "Post text"
// @Param        image formData file   false "Optional image"
// @Success      200 {object} types.Post
// @Failure      400 {object} types.Response "Text is required"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      502 {object} types.Response "Image upload failed"
// @Failure      500 {object} types.Response "Server error"
// @Security     BearerAuth
// @Router       /posts [post]
func (h *HandlerImpl) CreatePost(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "CreatePost"))

	callerID, ok := h.caller(w, r, l)
	if !ok {
		return
	}
	form, err := api.ReadMutationForm(w, r, h.maxUploadBytes, fieldText)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err, msgNotFound)
		return
	}

	params := types.CreatePostParams{Image: form.Image}
	if text := form.Field(fieldText); text != nil {
		params.Text = *text
	}

	post, err := h.postService.CreatePost(r.Context(), callerID, params)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err, msgNotFound)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, post)
}

// ListPosts godoc
// @Summary      List Posts
// @Description  Returns every post, newest first.
// @Tags         Posts
// @Produce      json
// @Success      200 {array} types.Post
// @Failure      500 {object} types.Response "Server error"
// @Router       /posts [get]
func (h *HandlerImpl) ListPosts(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "ListPosts"))

	posts, err := h.postService.ListPosts(r.Context())
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err, msgNotFound)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, posts)
}

// ListPostsByAuthor godoc
// @Summary      List Posts By Author
// @Description  Returns the posts written by one user, newest first.
// @Tags         Posts
// @Produce      json
// @Param        userId path string true "Author ID"
// @Success      200 {array} types.Post
// @Failure      400 {object} types.Response "Invalid user id"
// @Failure      500 {object} types.Response "Server error"
// @Router       /posts/user/{userId} [get]
func (h *HandlerImpl) ListPostsByAuthor(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "ListPostsByAuthor"))

	authorID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		l.WarnContext(r.Context(), "Invalid author id", slog.String("userId", chi.URLParam(r, "userId")))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}

	posts, err := h.postService.ListPostsByAuthor(r.Context(), authorID)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err, msgNotFound)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, posts)
}

// ToggleLike godoc
// @Summary      Like or Unlike Post
// @Description  Adds the caller to the like set, or removes them if already present.
// @Tags         Posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200 {object} types.LikeResult
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Post not found"
// @Failure      500 {object} types.Response "Server error"
// @Security     BearerAuth
// @Router       /posts/{id}/like [post]
func (h *HandlerImpl) ToggleLike(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "ToggleLike"))

	callerID, ok := h.caller(w, r, l)
	if !ok {
		return
	}
	postID, ok := h.postID(w, r, l)
	if !ok {
		return
	}

	result, err := h.postService.ToggleLike(r.Context(), postID, callerID)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err, msgNotFound)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// EditPost godoc
// @Summary      Edit Post
// @Description  Author only. A sent text replaces the stored one, even when empty. Without an image the stored image is kept.
// @Tags         Posts
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path     string true  "Post ID"
// @Param        text  formData string false "New text"
// @Param        image formData file   false "Replacement image"
// @Success      200 {object} types.Post
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      403 {object} types.Response "Not authorized"
// @Failure      404 {object} types.Response "Post not found"
// @Failure      502 {object} types.Response "Image upload failed"
// @Security     BearerAuth
// @Router       /posts/{id} [put]
func (h *HandlerImpl) EditPost(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "EditPost"))

	callerID, ok := h.caller(w, r, l)
	if !ok {
		return
	}
	postID, ok := h.postID(w, r, l)
	if !ok {
		return
	}
	form, err := api.ReadMutationForm(w, r, h.maxUploadBytes, fieldText)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err, msgNotFound)
		return
	}

	post, err := h.postService.EditPost(r.Context(), postID, callerID, types.EditPostParams{
		Text:  form.Field(fieldText),
		Image: form.Image,
	})
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err, msgNotFound)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete Post
// @Description  Author only. Removes the post permanently.
// @Tags         Posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200 {object} types.Response
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      403 {object} types.Response "Not authorized"
// @Failure      404 {object} types.Response "Post not found"
// @Security     BearerAuth
// @Router       /posts/{id} [delete]
func (h *HandlerImpl) DeletePost(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "DeletePost"))

	callerID, ok := h.caller(w, r, l)
	if !ok {
		return
	}
	postID, ok := h.postID(w, r, l)
	if !ok {
		return
	}

	if err := h.postService.DeletePost(r.Context(), postID, callerID); err != nil {
		api.ServiceErrorResponse(w, r, l, err, msgNotFound)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Post deleted"})
}

func (h *HandlerImpl) caller(w http.ResponseWriter, r *http.Request, l *slog.Logger) (uuid.UUID, bool) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		l.WarnContext(r.Context(), "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
	}
	return callerID, ok
}

// postID treats an unparsable id like an unknown one.
func (h *HandlerImpl) postID(w http.ResponseWriter, r *http.Request, l *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		l.WarnContext(r.Context(), "Invalid post id", slog.String("id", chi.URLParam(r, "id")))
		api.ErrorResponse(w, r, http.StatusNotFound, msgNotFound)
		return uuid.Nil, false
	}
	return id, true
}
