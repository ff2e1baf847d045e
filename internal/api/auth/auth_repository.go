package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	database "github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/app/db"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/app/observability/metrics"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

type AuthRepo interface {
	CreateUser(ctx context.Context, user *types.User) error
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool database.DBTX
}

func NewPostgresAuthRepo(pgpool database.DBTX, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// CreateUser inserts a registered user. A taken email yields types.ErrConflict.
func (r *PostgresAuthRepo) CreateUser(ctx context.Context, user *types.User) (err error) {
	start := time.Now()
	defer func() { metrics.Get().ObserveQuery(ctx, "users.create", start, err) }()

	_, err = r.pgpool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, bio, image_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Bio, user.ImageURL, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", types.ErrConflict)
		}
		r.logger.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		return fmt.Errorf("create user: %w: %w", types.ErrStore, err)
	}
	return nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (_ *types.User, err error) {
	start := time.Now()
	defer func() { metrics.Get().ObserveQuery(ctx, "users.get_by_email", start, err) }()

	var u types.User
	err = r.pgpool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, bio, image_url, created_at, updated_at
		 FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Bio, &u.ImageURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user by email: %w", types.ErrNotFound)
		}
		return nil, fmt.Errorf("user by email: %w: %w", types.ErrStore, err)
	}
	return &u, nil
}
