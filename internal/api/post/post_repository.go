package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	database "github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/app/db"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/app/observability/metrics"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

var _ PostRepo = (*PostgresPostRepo)(nil)

// PostRepo is the content store. Every returned post has its author resolved.
type PostRepo interface {
	Create(ctx context.Context, post *types.Post) (*types.Post, error)
	GetByID(ctx context.Context, postID uuid.UUID) (*types.Post, error)
	List(ctx context.Context) ([]types.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]types.Post, error)
	// Update writes text, image and likes in one statement. The author column
	// is never part of the write.
	Update(ctx context.Context, post *types.Post) (*types.Post, error)
	Delete(ctx context.Context, postID uuid.UUID) error
}

type PostgresPostRepo struct {
	logger *slog.Logger
	pgpool database.DBTX
}

func NewPostgresPostRepo(pgpool database.DBTX, logger *slog.Logger) *PostgresPostRepo {
	return &PostgresPostRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const postColumns = `p.id, p.author_id, u.name, u.image_url, p.text, p.image_url, p.likes, p.created_at, p.updated_at`

func scanPost(row pgx.Row) (*types.Post, error) {
	var p types.Post
	err := row.Scan(&p.ID, &p.Author.ID, &p.Author.Name, &p.Author.ImageURL,
		&p.Text, &p.ImageURL, &p.Likes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Likes == nil {
		p.Likes = []uuid.UUID{}
	}
	return &p, nil
}

func (r *PostgresPostRepo) Create(ctx context.Context, post *types.Post) (_ *types.Post, err error) {
	start := time.Now()
	defer func() { metrics.Get().ObserveQuery(ctx, "posts.create", start, err) }()

	query := `
        WITH p AS (
            INSERT INTO posts (id, author_id, text, image_url, likes, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING id, author_id, text, image_url, likes, created_at, updated_at
        )
        SELECT ` + postColumns + `
        FROM p JOIN users u ON u.id = p.author_id`

	created, err := scanPost(r.pgpool.QueryRow(ctx, query,
		post.ID, post.Author.ID, post.Text, post.ImageURL, post.Likes, post.CreatedAt, post.UpdatedAt))
	if err != nil {
		if database.IsForeignKeyViolation(err) || errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("create post: author: %w", types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to insert post", slog.Any("error", err))
		return nil, fmt.Errorf("create post: %w: %w", types.ErrStore, err)
	}
	return created, nil
}

func (r *PostgresPostRepo) GetByID(ctx context.Context, postID uuid.UUID) (_ *types.Post, err error) {
	start := time.Now()
	defer func() { metrics.Get().ObserveQuery(ctx, "posts.get_by_id", start, err) }()

	query := `SELECT ` + postColumns + `
        FROM posts p JOIN users u ON u.id = p.author_id
        WHERE p.id = $1`

	post, err := scanPost(r.pgpool.QueryRow(ctx, query, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("post %s: %w", postID, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to fetch post", slog.Any("error", err))
		return nil, fmt.Errorf("get post: %w: %w", types.ErrStore, err)
	}
	return post, nil
}

// List returns every post, newest first.
func (r *PostgresPostRepo) List(ctx context.Context) (_ []types.Post, err error) {
	start := time.Now()
	defer func() { metrics.Get().ObserveQuery(ctx, "posts.list", start, err) }()

	query := `SELECT ` + postColumns + `
        FROM posts p JOIN users u ON u.id = p.author_id
        ORDER BY p.created_at DESC, p.id DESC`

	return r.queryPosts(ctx, query)
}

func (r *PostgresPostRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) (_ []types.Post, err error) {
	start := time.Now()
	defer func() { metrics.Get().ObserveQuery(ctx, "posts.list_by_author", start, err) }()

	query := `SELECT ` + postColumns + `
        FROM posts p JOIN users u ON u.id = p.author_id
        WHERE p.author_id = $1
        ORDER BY p.created_at DESC, p.id DESC`

	return r.queryPosts(ctx, query, authorID)
}

func (r *PostgresPostRepo) queryPosts(ctx context.Context, query string, args ...any) ([]types.Post, error) {
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query posts", slog.Any("error", err))
		return nil, fmt.Errorf("list posts: %w: %w", types.ErrStore, err)
	}
	defer rows.Close()

	posts := []types.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan post row", slog.Any("error", err))
			return nil, fmt.Errorf("scan post: %w: %w", types.ErrStore, err)
		}
		posts = append(posts, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w: %w", types.ErrStore, err)
	}
	return posts, nil
}

func (r *PostgresPostRepo) Update(ctx context.Context, post *types.Post) (_ *types.Post, err error) {
	start := time.Now()
	defer func() { metrics.Get().ObserveQuery(ctx, "posts.update", start, err) }()

	query := `
        WITH p AS (
            UPDATE posts
            SET text = $2, image_url = $3, likes = $4, updated_at = $5
            WHERE id = $1
            RETURNING id, author_id, text, image_url, likes, created_at, updated_at
        )
        SELECT ` + postColumns + `
        FROM p JOIN users u ON u.id = p.author_id`

	updated, err := scanPost(r.pgpool.QueryRow(ctx, query,
		post.ID, post.Text, post.ImageURL, post.Likes, post.UpdatedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("post %s: %w", post.ID, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to update post", slog.Any("error", err))
		return nil, fmt.Errorf("update post: %w: %w", types.ErrStore, err)
	}
	return updated, nil
}

func (r *PostgresPostRepo) Delete(ctx context.Context, postID uuid.UUID) (err error) {
	start := time.Now()
	defer func() { metrics.Get().ObserveQuery(ctx, "posts.delete", start, err) }()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete post", slog.Any("error", err))
		return fmt.Errorf("delete post: %w: %w", types.ErrStore, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("post %s: %w", postID, types.ErrNotFound)
	}
	return nil
}
