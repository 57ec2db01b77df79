package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bayou-blog/internal/auth"
	"bayou-blog/internal/config"
	"bayou-blog/internal/database"
	"bayou-blog/internal/dedup"
	"bayou-blog/internal/engine"
	"bayou-blog/internal/handlers"
	"bayou-blog/internal/middleware"
	"bayou-blog/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Debug)

	store, err := newStore(cfg)
	if err != nil {
		slog.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}

	views, err := newDeduplicator(cfg)
	if err != nil {
		slog.Error("failed to initialize view dedup", "error", err)
		os.Exit(1)
	}

	metrics := utils.NewMetricsCollector()

	// Initialize actor system and engine
	system := actor.NewActorSystem()
	blogEngine := engine.NewEngine(system, store, views, cfg.Auth, metrics)

	server := handlers.NewServer(system, system.Root, blogEngine, metrics, store)
	resolver := auth.NewResolver(store, cfg.Auth.JWTSecret, cfg.Auth.AdminKey, cfg.Auth.AdminEmail, cfg.Auth.AdminUsername)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.HandleHealth())
	mux.HandleFunc("/user/register", server.HandleUserRegistration())
	mux.HandleFunc("/user/login", server.HandleUserLogin())
	mux.HandleFunc("/user/profile", server.HandleUserProfile())
	mux.HandleFunc("/post", server.HandlePost())
	mux.HandleFunc("/posts", server.HandlePosts())
	mux.HandleFunc("/post/like", server.HandleLike())
	mux.HandleFunc("/post/view", server.HandleView())
	mux.HandleFunc("/post/comment", server.HandleComment())
	mux.HandleFunc("/admin/users", server.HandleAdminUsers())
	mux.HandleFunc("/admin/posts", server.HandleAdminPosts())
	mux.HandleFunc("/admin/user", server.HandleAdminDeleteUser())
	mux.HandleFunc("/admin/post", server.HandleAdminDeletePost())

	var handler http.Handler = mux
	handler = middleware.IdentityMiddleware(resolver, handler)
	handler = middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.AllowedOrigins))(handler)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}

	go func() {
		slog.Info("starting server", "addr", serverAddr, "store", cfg.Database.Type)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	if err := store.Close(ctx); err != nil {
		slog.Error("store close error", "error", err)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func newStore(cfg *config.Config) (database.Store, error) {
	if cfg.Database.Type == "memory" {
		slog.Warn("using in-memory store; data will not survive a restart")
		return database.NewMemoryStore(), nil
	}
	return database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
}

func newDeduplicator(cfg *config.Config) (dedup.Deduplicator, error) {
	if cfg.Redis.Addr == "" {
		slog.Warn("REDIS_ADDR not set; view dedup windows are process-local")
		return dedup.NewMemoryDeduplicator(), nil
	}

	client, err := dedup.Connect(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	return dedup.NewRedisDeduplicator(client), nil
}
