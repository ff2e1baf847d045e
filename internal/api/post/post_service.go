package post

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/app/observability/metrics"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/authz"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/media"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

var _ PostService = (*PostServiceImpl)(nil)

// PostService orchestrates the post lifecycle. Mutations that carry an image
// upload it before touching the store, so a failed upload writes nothing.
type PostService interface {
	CreatePost(ctx context.Context, authorID uuid.UUID, params types.CreatePostParams) (*types.Post, error)
	ListPosts(ctx context.Context) ([]types.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]types.Post, error)
	ToggleLike(ctx context.Context, postID, callerID uuid.UUID) (*types.LikeResult, error)
	EditPost(ctx context.Context, postID, callerID uuid.UUID, params types.EditPostParams) (*types.Post, error)
	DeletePost(ctx context.Context, postID, callerID uuid.UUID) error
}

type PostServiceImpl struct {
	logger   *slog.Logger
	repo     PostRepo
	uploader media.Uploader
	now      func() time.Time
}

func NewPostService(repo PostRepo, uploader media.Uploader, logger *slog.Logger) *PostServiceImpl {
	return &PostServiceImpl{
		logger:   logger,
		repo:     repo,
		uploader: uploader,
		now:      time.Now,
	}
}

func (s *PostServiceImpl) CreatePost(ctx context.Context, authorID uuid.UUID, params types.CreatePostParams) (*types.Post, error) {
	ctx, span := otel.Tracer("PostService").Start(ctx, "CreatePost", trace.WithAttributes(
		attribute.String("author.id", authorID.String()),
		attribute.Bool("post.has_image", params.Image != nil),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreatePost"), slog.String("authorID", authorID.String()))

	if params.Text == "" {
		span.SetStatus(codes.Error, "empty text")
		return nil, fmt.Errorf("create post: %w: text is required", types.ErrValidation)
	}

	imageURL, err := s.upload(ctx, span, params.Image)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &types.Post{
		ID:        uuid.New(),
		Author:    types.AuthorSummary{ID: authorID},
		Text:      params.Text,
		ImageURL:  imageURL,
		Likes:     []uuid.UUID{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to persist post")
		return nil, err
	}

	metrics.Get().PostsCreatedTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Post created", slog.String("postID", created.ID.String()))
	span.SetStatus(codes.Ok, "Post created")
	return created, nil
}

func (s *PostServiceImpl) ListPosts(ctx context.Context) ([]types.Post, error) {
	ctx, span := otel.Tracer("PostService").Start(ctx, "ListPosts")
	defer span.End()

	posts, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list posts")
		return nil, err
	}
	span.SetAttributes(attribute.Int("posts.count", len(posts)))
	span.SetStatus(codes.Ok, "Posts listed")
	return posts, nil
}

// ListPostsByAuthor falls back to filtering the full list when the filtered
// query fails. Both paths yield the same posts in the same order.
func (s *PostServiceImpl) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]types.Post, error) {
	ctx, span := otel.Tracer("PostService").Start(ctx, "ListPostsByAuthor", trace.WithAttributes(
		attribute.String("author.id", authorID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "ListPostsByAuthor"), slog.String("authorID", authorID.String()))

	posts, err := s.repo.ListByAuthor(ctx, authorID)
	if err == nil {
		span.SetStatus(codes.Ok, "Posts listed")
		return posts, nil
	}
	l.WarnContext(ctx, "Filtered query failed, filtering full list", slog.Any("error", err))
	span.AddEvent("fallback_to_full_list")

	all, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list posts")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Posts listed via fallback")
	return types.FilterByAuthor(all, authorID), nil
}

// ToggleLike adds callerID to the like set, or removes it when already there.
// Any authenticated caller may like any post, the author included.
func (s *PostServiceImpl) ToggleLike(ctx context.Context, postID, callerID uuid.UUID) (*types.LikeResult, error) {
	ctx, span := otel.Tracer("PostService").Start(ctx, "ToggleLike", trace.WithAttributes(
		attribute.String("post.id", postID.String()),
		attribute.String("caller.id", callerID.String()),
	))
	defer span.End()

	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load post")
		return nil, err
	}

	var liked bool
	post.Likes, liked = toggleLike(post.Likes, callerID)
	post.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to store like")
		return nil, err
	}

	metrics.Get().LikesToggledTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("liked", liked)))
	span.SetAttributes(attribute.Bool("post.liked", liked))
	span.SetStatus(codes.Ok, "Like toggled")
	return &types.LikeResult{Post: updated, Liked: liked}, nil
}

// EditPost replaces the text when params.Text is set, even with "".
// An omitted image keeps the stored URL.
func (s *PostServiceImpl) EditPost(ctx context.Context, postID, callerID uuid.UUID, params types.EditPostParams) (*types.Post, error) {
	ctx, span := otel.Tracer("PostService").Start(ctx, "EditPost", trace.WithAttributes(
		attribute.String("post.id", postID.String()),
		attribute.String("caller.id", callerID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "EditPost"), slog.String("postID", postID.String()))

	post, err := s.ownedPost(ctx, span, postID, callerID)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.upload(ctx, span, params.Image)
	if err != nil {
		return nil, err
	}

	if params.Text != nil {
		post.Text = *params.Text
	}
	if imageURL != "" {
		post.ImageURL = imageURL
	}
	post.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update post")
		return nil, err
	}

	l.InfoContext(ctx, "Post edited", slog.Bool("text_changed", params.Text != nil), slog.Bool("image_changed", imageURL != ""))
	span.SetStatus(codes.Ok, "Post edited")
	return updated, nil
}

func (s *PostServiceImpl) DeletePost(ctx context.Context, postID, callerID uuid.UUID) error {
	ctx, span := otel.Tracer("PostService").Start(ctx, "DeletePost", trace.WithAttributes(
		attribute.String("post.id", postID.String()),
		attribute.String("caller.id", callerID.String()),
	))
	defer span.End()

	if _, err := s.ownedPost(ctx, span, postID, callerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, postID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete post")
		return err
	}

	s.logger.InfoContext(ctx, "Post deleted", slog.String("postID", postID.String()))
	span.SetStatus(codes.Ok, "Post deleted")
	return nil
}

// ownedPost loads the post and checks authorship. A missing post wins over a
// foreign one.
func (s *PostServiceImpl) ownedPost(ctx context.Context, span trace.Span, postID, callerID uuid.UUID) (*types.Post, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load post")
		return nil, err
	}
	if err = authz.RequireOwner(callerID, post.Author.ID); err != nil {
		span.SetStatus(codes.Error, "Caller is not the author")
		return nil, fmt.Errorf("post %s: %w", postID, err)
	}
	return post, nil
}

func (s *PostServiceImpl) upload(ctx context.Context, span trace.Span, blob *types.Blob) (string, error) {
	if blob == nil {
		return "", nil
	}
	url, err := s.uploader.Upload(ctx, blob, media.FolderPosts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Image upload failed")
		return "", err
	}
	return url, nil
}

// toggleLike returns a new like set with userID flipped and whether it is now
// present. The input is not modified.
func toggleLike(likes []uuid.UUID, userID uuid.UUID) ([]uuid.UUID, bool) {
	if slices.Contains(likes, userID) {
		return slices.DeleteFunc(slices.Clone(likes), func(id uuid.UUID) bool { return id == userID }), false
	}
	return append(slices.Clone(likes), userID), true
}
