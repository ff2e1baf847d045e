package container

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/app/db"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/config"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/auth"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/media"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/post"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/user"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *slog.Logger
	Pool         *pgxpool.Pool
	Uploader     *media.S3Uploader
	AuthHandler  *auth.HandlerImpl
	PostHandler  *post.HandlerImpl
	UserHandler  *user.HandlerImpl
	Authenticate func(http.Handler) http.Handler
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	uploader, err := media.NewS3Uploader(ctx, cfg.Media, logger)
	if err != nil {
		logger.Error("Failed to initialize media uploader", slog.Any("error", err))
		pool.Close()
		return nil, err
	}

	// Initialize repositories
	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	postRepo := post.NewPostgresPostRepo(pool, logger)
	userRepo := user.NewPostgresUserRepo(pool, logger)

	// Initialize services
	authService := auth.NewAuthService(authRepo, cfg.JWT, cfg.Auth, logger)
	postService := post.NewPostService(postRepo, uploader, logger)
	userService := user.NewUserService(userRepo, uploader, logger)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Pool:         pool,
		Uploader:     uploader,
		AuthHandler:  auth.NewHandlerImpl(authService, logger),
		PostHandler:  post.NewHandlerImpl(postService, cfg.Media.MaxUploadBytes, logger),
		UserHandler:  user.NewHandlerImpl(userService, cfg.Media.MaxUploadBytes, logger),
		Authenticate: auth.Authenticate(logger, cfg.JWT),
	}, nil
}

// Router builds the API route table from the container's handlers.
func (c *Container) Router() http.Handler {
	return router.SetupRouter(&router.Config{
		AuthHandler:            c.AuthHandler,
		PostHandler:            c.PostHandler,
		UserHandler:            c.UserHandler,
		AuthenticateMiddleware: c.Authenticate,
		AllowedOrigins:         c.Config.CORS.AllowedOrigins,
	})
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// EnsureMediaBucket creates the upload bucket on first start.
func (c *Container) EnsureMediaBucket(ctx context.Context) error {
	return c.Uploader.EnsureBucket(ctx)
}
