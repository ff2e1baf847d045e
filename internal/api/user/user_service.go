package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/app/observability/metrics"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/authz"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/media"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

// Ensure implementation satisfies the interface
var _ UserService = (*UserServiceImpl)(nil)

// UserService is the profile service. Every user it returns is sanitized.
type UserService interface {
	GetSelf(ctx context.Context, callerID uuid.UUID) (*types.UserView, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.UserView, error)
	UpdateProfile(ctx context.Context, targetID, callerID uuid.UUID, params types.UpdateProfileParams) (*types.UserView, error)
}

// UserServiceImpl provides the implementation for UserService.
type UserServiceImpl struct {
	logger   *slog.Logger
	repo     UserRepo
	uploader media.Uploader
	now      func() time.Time
}

// NewUserService creates a new user service instance.
func NewUserService(repo UserRepo, uploader media.Uploader, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger:   logger,
		repo:     repo,
		uploader: uploader,
		now:      time.Now,
	}
}

// GetSelf returns the caller's own profile. A token for a user that no longer
// exists yields types.ErrNotFound.
func (s *UserServiceImpl) GetSelf(ctx context.Context, callerID uuid.UUID) (*types.UserView, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "GetSelf", trace.WithAttributes(
		attribute.String("user.id", callerID.String()),
	))
	defer span.End()

	return s.view(ctx, span, callerID)
}

func (s *UserServiceImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.UserView, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "GetUserByID", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	return s.view(ctx, span, userID)
}

func (s *UserServiceImpl) view(ctx context.Context, span trace.Span, userID uuid.UUID) (*types.UserView, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch user")
		return nil, err
	}
	span.SetStatus(codes.Ok, "User fetched")
	return user.View(), nil
}

// UpdateProfile edits the caller's own profile. Name and bio change only when
// sent non-empty; an empty string leaves the stored value. This differs from
// post text on purpose.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, targetID, callerID uuid.UUID, params types.UpdateProfileParams) (*types.UserView, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "UpdateProfile", trace.WithAttributes(
		attribute.String("user.id", targetID.String()),
		attribute.String("caller.id", callerID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateProfile"), slog.String("userID", targetID.String()))

	if _, err := s.repo.GetUserByID(ctx, targetID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch user")
		return nil, err
	}
	if err := authz.RequireOwner(callerID, targetID); err != nil {
		l.WarnContext(ctx, "Profile edit by another user", slog.String("callerID", callerID.String()))
		span.SetStatus(codes.Error, "Caller is not the profile owner")
		return nil, fmt.Errorf("update profile: %w", err)
	}

	fields := ProfileFields{
		Name: keepIfBlank(params.Name),
		Bio:  keepIfBlank(params.Bio),
	}
	if params.Image != nil {
		url, err := s.uploader.Upload(ctx, params.Image, media.FolderUsers)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Avatar upload failed")
			return nil, err
		}
		fields.ImageURL = &url
	}

	user, err := s.repo.UpdateProfile(ctx, targetID, fields, s.now().UTC())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update profile")
		return nil, err
	}

	metrics.Get().ProfileUpdatesTotal.Add(ctx, 1)
	l.InfoContext(ctx, "User profile updated successfully")
	span.SetStatus(codes.Ok, "Profile updated")
	return user.View(), nil
}

// keepIfBlank drops an empty value so the stored one is kept.
func keepIfBlank(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
