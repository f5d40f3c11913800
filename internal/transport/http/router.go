package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mingle/internal/handler"
	"mingle/internal/httputil"
	authmw "mingle/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	UserHandler         *handler.UserHandler
	FollowHandler       *handler.FollowHandler
	PostHandler         *handler.PostHandler
	CommentHandler      *handler.CommentHandler
	NotificationHandler *handler.NotificationHandler
	FeedHandler         *handler.FeedHandler
	MediaHandler        *handler.MediaHandler
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public reads with optional authentication: known viewers get
	// personalized is_following / is_liked flags.
	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuthMiddleware(cfg.JWTSecret))

		r.Route("/users", func(r chi.Router) {
			r.Get("/search", cfg.UserHandler.Search)
			r.Get("/{uid}", cfg.UserHandler.GetProfile)
			r.Get("/{uid}/followers", cfg.FollowHandler.GetFollowers)
			r.Get("/{uid}/following", cfg.FollowHandler.GetFollowing)
			r.Get("/{uid}/posts", cfg.PostHandler.GetUserPosts)
		})

		r.Get("/posts", cfg.PostHandler.GetGlobalFeed)
		r.Get("/posts/{id}", cfg.PostHandler.GetByID)
		r.Get("/posts/{id}/comments", cfg.CommentHandler.GetByPostID)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Post("/users", cfg.UserHandler.CreateProfile)
		r.Patch("/users/me", cfg.UserHandler.UpdateProfile)

		r.Post("/users/{uid}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{uid}/follow", cfg.FollowHandler.Unfollow)

		r.Get("/feed", cfg.FeedHandler.GetFeed)

		r.Post("/posts", cfg.PostHandler.Create)
		r.Delete("/posts/{id}", cfg.PostHandler.Delete)
		r.Post("/posts/{id}/like", cfg.PostHandler.ToggleLike)
		r.Post("/posts/{id}/comments", cfg.CommentHandler.Create)

		r.Delete("/comments/{id}", cfg.CommentHandler.Delete)
		r.Post("/comments/{id}/like", cfg.CommentHandler.ToggleLike)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.GetNotifications)
			r.Post("/read", cfg.NotificationHandler.MarkAsRead)
			r.Post("/read-all", cfg.NotificationHandler.MarkAllAsRead)
			r.Get("/unread-count", cfg.NotificationHandler.GetUnreadCount)
		})

		r.Post("/media/avatar", cfg.MediaHandler.UploadAvatar)
		r.Post("/media/cover", cfg.MediaHandler.UploadCover)
		r.Post("/media/posts", cfg.MediaHandler.UploadPostImage)
	})

	return r
}
