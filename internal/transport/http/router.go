package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pinboard/internal/handler"
	"pinboard/internal/httputil"
	authmw "pinboard/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	FollowHandler       *handler.FollowHandler
	FeedHandler         *handler.FeedHandler
	PinHandler          *handler.PinHandler
	BoardHandler        *handler.BoardHandler
	CommentHandler      *handler.CommentHandler
	MediaHandler        *handler.MediaHandler
	NotificationHandler *handler.NotificationHandler
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Public user endpoints with optional authentication
	r.Route("/users", func(r chi.Router) {
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/{id}", cfg.UserHandler.GetProfile)
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/{id}/followers", cfg.FollowHandler.GetFollowers)
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/{id}/following", cfg.FollowHandler.GetFollowing)
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/{id}/pins", cfg.PinHandler.GetUserCreated)
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/{id}/saved", cfg.PinHandler.GetUserSaved)
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/{id}/boards", cfg.BoardHandler.GetUserBoards)
	})

	// Public pin and board reads with optional authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuthMiddleware(cfg.JWTSecret))

		r.Get("/pins/{id}", cfg.PinHandler.GetByID)
		r.Get("/pins/{id}/comments", cfg.CommentHandler.GetByPin)
		r.Get("/boards/{id}", cfg.BoardHandler.Get)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)
		r.Patch("/me", cfg.UserHandler.UpdateProfile)
		r.Delete("/me", cfg.UserHandler.DeleteAccount)

		// Auth actions that require authentication
		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		// Follow toggle
		r.Post("/users/{id}/follow", cfg.FollowHandler.Toggle)

		// Feed endpoint
		r.Get("/feed", cfg.FeedHandler.GetFeed)

		// Pin endpoints
		r.Post("/pins", cfg.PinHandler.Create)
		r.Patch("/pins/{id}", cfg.PinHandler.Update)
		r.Delete("/pins/{id}", cfg.PinHandler.Delete)
		r.Post("/pins/{id}/like", cfg.PinHandler.ToggleLike)
		r.Post("/pins/{id}/save", cfg.PinHandler.Save)

		// Board endpoints
		r.Post("/boards", cfg.BoardHandler.Create)
		r.Patch("/boards/{id}", cfg.BoardHandler.Update)
		r.Delete("/boards/{id}", cfg.BoardHandler.Delete)

		// Comment endpoints
		r.Post("/pins/{id}/comments", cfg.CommentHandler.Create)
		r.Post("/pins/{id}/comments/{commentId}/replies", cfg.CommentHandler.Reply)
		r.Patch("/comments/{id}", cfg.CommentHandler.Update)
		r.Delete("/comments/{id}", cfg.CommentHandler.Delete)
		r.Post("/comments/{id}/like", cfg.CommentHandler.ToggleLike)

		// Media uploads (stored in R2)
		if cfg.MediaHandler != nil {
			r.Post("/media/avatar", cfg.MediaHandler.UploadAvatar)
			r.Post("/media/pin", cfg.MediaHandler.UploadPinFile)
		}

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.List)
			r.Post("/read", cfg.NotificationHandler.MarkRead)
			r.Post("/read-all", cfg.NotificationHandler.MarkAllRead)
		})
	})

	return r
}
