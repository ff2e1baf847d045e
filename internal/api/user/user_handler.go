package user

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/auth"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

const msgNotFound = "User not found"

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetSelf(w http.ResponseWriter, r *http.Request)
	GetUser(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	userService    UserService
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewHandlerImpl creates a new user HandlerImpl instance.
func NewHandlerImpl(userService UserService, maxUploadBytes int64, logger *slog.Logger) *HandlerImpl {
	if logger == nil {
		panic("PANIC: Attempting to create HandlerImpl with nil logger!")
	}
	return &HandlerImpl{
		userService:    userService,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// GetSelf godoc
// @Summary      Get Current User
// @Description  Retrieves the authenticated user's profile.
// @Tags         User
// @Produce      json
// @Success      200 {object} types.UserView
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "User not found"
// @Failure      500 {object} types.Response "Server error"
// @Security     BearerAuth
// @Router       /users/me [get]
func (h *HandlerImpl) GetSelf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetSelf"))

	callerID, ok := auth.CallerID(ctx)
	if !ok {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.userService.GetSelf(ctx, callerID)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err, msgNotFound)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

// GetUser godoc
// @Summary      Get User
// @Description  Retrieves any user's public profile.
// @Tags         User
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} types.UserView
// @Failure      404 {object} types.Response "User not found"
// @Failure      500 {object} types.Response "Server error"
// @Router       /users/{id} [get]
func (h *HandlerImpl) GetUser(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "GetUser"))

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		l.WarnContext(r.Context(), "Invalid user ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err, msgNotFound)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary      Update Profile
// @Description  Self only. Empty name or bio values are ignored. An attached image replaces the avatar.
// @Tags         User
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path     string true  "User ID"
// @Param        name  formData string false "Display name"
// @Param        bio   formData string false "Bio"
// @Param        image formData file   false "Avatar"
// @Success      200 {object} types.UserView
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      403 {object} types.Response "Not authorized"
// @Failure      404 {object} types.Response "User not found"
// @Failure      502 {object} types.Response "Image upload failed"
// @Security     BearerAuth
// @Router       /users/{id} [put]
func (h *HandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdateProfile"))

	callerID, ok := auth.CallerID(ctx)
	if !ok {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		l.WarnContext(ctx, "Invalid user ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	form, err := api.ReadMutationForm(w, r, h.maxUploadBytes, "name", "bio")
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err, msgNotFound)
		return
	}

	user, err := h.userService.UpdateProfile(ctx, targetID, callerID, types.UpdateProfileParams{
		Name:  form.Field("name"),
		Bio:   form.Field("bio"),
		Image: form.Image,
	})
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err, msgNotFound)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}
