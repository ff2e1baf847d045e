package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/app/observability/metrics"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/config"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

const minPasswordLength = 6

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService issues bearer tokens. It is the credential collaborator that
// turns an email and password into the caller identity the other services trust.
type AuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error)
	Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error)
}

type AuthServiceImpl struct {
	logger    *slog.Logger
	repo      AuthRepo
	jwtCfg    config.JWTConfig
	failed    *cache.Cache
	maxFailed int
	hashCost  int
	now       func() time.Time
}

func NewAuthService(repo AuthRepo, jwtCfg config.JWTConfig, authCfg config.AuthConfig, logger *slog.Logger) *AuthServiceImpl {
	window := authCfg.LockoutWindow
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &AuthServiceImpl{
		logger:    logger,
		repo:      repo,
		jwtCfg:    jwtCfg,
		failed:    cache.New(window, 2*window),
		maxFailed: authCfg.MaxFailedLogins,
		hashCost:  bcrypt.DefaultCost,
		now:       time.Now,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register")
	defer span.End()

	l := s.logger.With(slog.String("method", "Register"))

	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if err := validateCredentials(email, req.Password); err != nil {
		span.SetStatus(codes.Error, "invalid registration")
		return nil, err
	}
	if name == "" {
		span.SetStatus(codes.Error, "invalid registration")
		return nil, fmt.Errorf("register: %w: name is required", types.ErrValidation)
	}
	if len(req.Password) < minPasswordLength {
		span.SetStatus(codes.Error, "invalid registration")
		return nil, fmt.Errorf("register: %w: password must be at least %d characters", types.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hash failed")
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	user := &types.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = s.repo.CreateUser(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create user failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	token, err := s.issueToken(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token signing failed")
		return nil, err
	}

	l.InfoContext(ctx, "User registered", slog.String("userID", user.ID.String()))
	span.SetStatus(codes.Ok, "User registered")
	return &types.AuthResponse{Token: token, User: user.View()}, nil
}

// Login verifies credentials. Repeated failures for one email within the
// lockout window yield types.ErrTooManyAttempts until the window passes.
func (s *AuthServiceImpl) Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"))
	email := normalizeEmail(req.Email)
	if err := validateCredentials(email, req.Password); err != nil {
		span.SetStatus(codes.Error, "invalid login")
		return nil, err
	}

	if s.lockedOut(email) {
		s.recordAttempt(ctx, "locked")
		l.WarnContext(ctx, "Login throttled", slog.String("email", email))
		span.SetStatus(codes.Error, "too many attempts")
		return nil, fmt.Errorf("login: %w", types.ErrTooManyAttempts)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "lookup failed")
			return nil, err
		}
		return nil, s.rejectLogin(ctx, span, email)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, s.rejectLogin(ctx, span, email)
	}

	s.failed.Delete(email)
	token, err := s.issueToken(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token signing failed")
		return nil, err
	}

	s.recordAttempt(ctx, "success")
	span.SetAttributes(attribute.String("user.id", user.ID.String()))
	span.SetStatus(codes.Ok, "Logged in")
	l.InfoContext(ctx, "User logged in", slog.String("userID", user.ID.String()))
	return &types.AuthResponse{Token: token, User: user.View()}, nil
}

func (s *AuthServiceImpl) rejectLogin(ctx context.Context, span trace.Span, email string) error {
	if err := s.failed.Add(email, 1, cache.DefaultExpiration); err != nil {
		_, _ = s.failed.IncrementInt(email, 1)
	}
	s.recordAttempt(ctx, "failure")
	span.SetStatus(codes.Error, "invalid credentials")
	return fmt.Errorf("login: %w", types.ErrUnauthenticated)
}

func (s *AuthServiceImpl) lockedOut(email string) bool {
	if s.maxFailed <= 0 {
		return false
	}
	v, ok := s.failed.Get(email)
	if !ok {
		return false
	}
	n, _ := v.(int)
	return n >= s.maxFailed
}

func (s *AuthServiceImpl) recordAttempt(ctx context.Context, outcome string) {
	metrics.Get().LoginAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (s *AuthServiceImpl) issueToken(user *types.User) (string, error) {
	now := s.now()
	claims := types.Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessTokenTTL)),
		},
	}
	if s.jwtCfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.jwtCfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", types.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email is invalid", types.ErrValidation)
	}
	return nil
}
