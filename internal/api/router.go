package api

import (
	"log/slog"
	"net/http"

	"github.com/dom/personal-blog/internal/api/handlers"
	"github.com/dom/personal-blog/internal/api/middleware"
	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/service"
	"github.com/dom/personal-blog/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handlers.NewAuthHandler(services.Auth, cfg, logger)
	postHandler := handlers.NewPostHandler(services.Posts, cfg)
	statsHandler := handlers.NewStatsHandler(services.Stats, cfg)
	commentHandler := handlers.NewCommentHandler(services.Comments, cfg)
	likeHandler := handlers.NewLikeHandler(services.Likes)
	followHandler := handlers.NewFollowHandler(services.Follows, cfg)
	notificationHandler := handlers.NewNotificationHandler(services.Notifications, cfg)
	chatHandler := handlers.NewChatHandler(services.Chat, cfg)
	adminHandler := handlers.NewAdminHandler(services.Admin, cfg)
	wsHandler := handlers.NewWebSocketHandler(hub, cfg.AllowedOrigins, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(services.Gate, logger))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.With(middleware.RequireAuth).Put("/profile", authHandler.UpdateProfile)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.List)
			r.Get("/{idOrSlug}", postHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", postHandler.Create)
				r.Put("/{idOrSlug}", postHandler.Update)
				r.Delete("/{idOrSlug}", postHandler.Delete)
			})
		})

		r.Get("/stats/{slug}", statsHandler.GetPostStats)
		r.Post("/stats/{slug}", statsHandler.RecordView)
		r.Get("/site-stats", statsHandler.SiteStats)

		r.Get("/comments/{slug}", commentHandler.List)
		r.With(middleware.RequireAuth).Post("/comments/{slug}", commentHandler.Create)

		r.Get("/likes/{slug}", likeHandler.Status)
		r.With(middleware.RequireAuth).Post("/likes/{slug}", likeHandler.Toggle)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/follow/{username}", followHandler.Status)
			r.Post("/follow/{username}", followHandler.Toggle)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Put("/", notificationHandler.MarkRead)
				r.Delete("/", notificationHandler.Delete)
			})

			r.Route("/chat", func(r chi.Router) {
				r.Get("/messages", chatHandler.List)
				r.Post("/messages", chatHandler.Post)
				r.Delete("/messages", chatHandler.Delete)
				r.Get("/ws", wsHandler.Handle)
			})
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(services.Gate, logger))

			r.Get("/users", adminHandler.ListUsers)
			r.Put("/users", adminHandler.UpdateUser)
			r.Delete("/users", adminHandler.DeleteUser)
			r.Get("/posts", adminHandler.ListPosts)
			r.Delete("/posts", adminHandler.DeletePost)
			r.Post("/sync-comments", adminHandler.SyncComments)
		})
	})

	return r
}
