package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/docs"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/auth"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/post"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api/user"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            auth.Handler
	PostHandler            post.Handler
	UserHandler            user.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("LinkSphere API is running"))
	})
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {

		// --- Public Routes ---
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)

			r.Get("/posts", cfg.PostHandler.ListPosts)
			r.Get("/posts/user/{userId}", cfg.PostHandler.ListPostsByAuthor)
			r.Get("/users/{id}", cfg.UserHandler.GetUser)
		})

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/posts", cfg.PostHandler.CreatePost)
			r.Post("/posts/{id}/like", cfg.PostHandler.ToggleLike)
			r.Put("/posts/{id}", cfg.PostHandler.EditPost)
			r.Delete("/posts/{id}", cfg.PostHandler.DeletePost)

			r.Get("/users/me", cfg.UserHandler.GetSelf)
			r.Put("/users/{id}", cfg.UserHandler.UpdateProfile)
		})
	})

	return r
}
