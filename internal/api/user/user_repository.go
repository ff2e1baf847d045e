package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/app/db"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/app/observability/metrics"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

// ProfileFields are the columns a profile edit may write. Nil leaves a column alone.
type ProfileFields struct {
	Name     *string
	Bio      *string
	ImageURL *string
}

// UserRepo is the identity store.
type UserRepo interface {
	// GetUserByID returns types.ErrNotFound when the user doesn't exist.
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	// UpdateProfile writes the non-nil fields and bumps updated_at in one
	// statement, returning the stored row.
	UpdateProfile(ctx context.Context, userID uuid.UUID, fields ProfileFields, at time.Time) (*types.User, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool database.DBTX
}

func NewPostgresUserRepo(pgpool database.DBTX, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = `id, name, email, password_hash, bio, image_url, created_at, updated_at`

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Bio, &u.ImageURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (_ *types.User, err error) {
	start := time.Now()
	defer func() { metrics.Get().ObserveQuery(ctx, "users.get_by_id", start, err) }()

	user, err := scanUser(r.pgpool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to fetch user", slog.Any("error", err))
		return nil, fmt.Errorf("get user: %w: %w", types.ErrStore, err)
	}
	return user, nil
}

func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, fields ProfileFields, at time.Time) (_ *types.User, err error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "UpdateProfile", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	start := time.Now()
	defer func() { metrics.Get().ObserveQuery(ctx, "users.update_profile", start, err) }()

	l := r.logger.With(slog.String("method", "UpdateProfile"), slog.String("userID", userID.String()))

	var setClauses []string
	var args []interface{}
	argID := 1

	if fields.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argID))
		args = append(args, *fields.Name)
		argID++
		span.SetAttributes(attribute.Bool("update.name", true))
	}
	if fields.Bio != nil {
		setClauses = append(setClauses, fmt.Sprintf("bio = $%d", argID))
		args = append(args, *fields.Bio)
		argID++
		span.SetAttributes(attribute.Bool("update.bio", true))
	}
	if fields.ImageURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("image_url = $%d", argID))
		args = append(args, *fields.ImageURL)
		argID++
		span.SetAttributes(attribute.Bool("update.image_url", true))
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, at)
	argID++
	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argID, userColumns)
	l.DebugContext(ctx, "Executing dynamic update query", slog.String("query", query), slog.Int("arg_count", len(args)))

	user, err := scanUser(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user %s: %w", userID, types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to execute profile update", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return nil, fmt.Errorf("update profile: %w: %w", types.ErrStore, err)
	}

	span.SetStatus(codes.Ok, "Profile updated")
	return user, nil
}
