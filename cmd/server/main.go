package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/personal-blog/internal/api"
	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/logging"
	"github.com/dom/personal-blog/internal/repository/postgres"
	"github.com/dom/personal-blog/internal/service"
	"github.com/dom/personal-blog/internal/websocket"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.LogLevel, logFormat(cfg))
	slog.SetDefault(log)

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL, logger.Warn)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := postgres.Migrate(db); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Initialize login guard
	guard, closeGuard := newLoginGuard(cfg, log)
	defer closeGuard()

	// Initialize WebSocket hub
	hub := websocket.NewHub(log)
	go hub.Run()

	// Initialize services
	services := service.NewServices(repos, cfg, guard, hub, log)

	// Initialize router
	router := api.NewRouter(services, hub, cfg, log)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	hub.Stop()

	log.Info("server stopped")
}

func logFormat(cfg *config.Config) string {
	if cfg.LogFormat != "" {
		return cfg.LogFormat
	}
	if cfg.IsProduction() {
		return "json"
	}
	return "text"
}

// newLoginGuard uses Redis when REDIS_URL is set so limits are shared across
// instances, and an in-process cache otherwise.
func newLoginGuard(cfg *config.Config, log *slog.Logger) (*service.LoginGuard, func()) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("invalid REDIS_URL, falling back to in-memory login guard", "error", err)
		} else {
			client := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable, login guard will fail open until it recovers", "error", err)
			}
			store := service.NewRedisFailureStore(client, "blog:login_failures")
			guard := service.NewLoginGuard(store, cfg.LoginMaxFailures, cfg.LoginFailureWindow, log)
			return guard, func() { _ = client.Close() }
		}
	}

	store := service.NewMemoryFailureStore()
	guard := service.NewLoginGuard(store, cfg.LoginMaxFailures, cfg.LoginFailureWindow, log)
	return guard, store.Stop
}
