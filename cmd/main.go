/*
Package main is the entry point for the noticehub server.

It loads configuration, initializes logging, opens storage, wires the relay pipeline
and the HTTP server, and shuts everything down in order on SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"noticehub/internal/app/auth"
	"noticehub/internal/app/db"
	"noticehub/internal/app/db/memdb"
	"noticehub/internal/app/notice"
	"noticehub/internal/app/realtime"
	"noticehub/internal/app/relay"
	"noticehub/internal/app/user"
	"noticehub/internal/configs"
	"noticehub/internal/handler"
	"noticehub/internal/pkg/auth/jwt"
	"noticehub/internal/pkg/logx"
)

type repositories interface {
	user.Repository
	notice.Repository
}

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("storage_driver", cfg.StorageDriver).
		Bool("redis", cfg.RedisURL != "").
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore := openStore(ctx, cfg)
	defer closeStore()

	codec, err := jwt.NewCodec(cfg.JWTSecret)
	if err != nil {
		logx.Fatal(err, "Failed to create token codec")
	}

	authenticator, err := auth.NewAuthenticator(repos, codec, cfg.TokenTTL, cfg.BcryptCost)
	if err != nil {
		logx.Fatal(err, "Failed to create authenticator")
	}

	registry := realtime.NewRegistry()
	broadcaster, closeBus := openBroadcaster(ctx, cfg, registry)
	defer closeBus()

	dispatcher := relay.NewDispatcher(
		relay.NewRelay(broadcaster, repos),
		cfg.RelayWorkers,
		cfg.RelayQueueSize,
		relay.DefaultJobTimeout,
	)
	dispatcher.Start()

	deps := &handler.AppDeps{
		Config:        cfg,
		Users:         repos,
		Notices:       notice.NewStore(repos, repos),
		Authenticator: authenticator,
		Authorizer:    auth.NewAuthorizer(repos, codec),
		Registry:      registry,
		Dispatcher:    dispatcher,
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           handler.Router(ctx, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("noticehub starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Relay queue not fully drained")
	}

	registry.CloseAll()

	logx.Info("Server gracefully stopped.")
}

// openStore returns the configured repositories and a function releasing them.
func openStore(ctx context.Context, cfg *configs.AppConfig) (repositories, func()) {
	if cfg.StorageDriver == configs.StorageDriverMemory {
		logx.Warn("Using in-memory storage; all data is lost on restart.")
		return memdb.New(), func() {}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to connect to database")
	}
	logx.Info("Database connection established.")

	return db.New(pool), pool.Close
}

// openBroadcaster returns the Redis bus when REDIS_URL is set, else local delivery only.
func openBroadcaster(ctx context.Context, cfg *configs.AppConfig, registry *realtime.Registry) (relay.Broadcaster, func()) {
	if cfg.RedisURL == "" {
		return relay.LocalBroadcaster{Registry: registry}, func() {}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logx.Fatal(err, "Invalid REDIS_URL")
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logx.Fatal(err, "Failed to connect to Redis")
	}

	bus := realtime.NewRedisBus(client, registry)
	go bus.Run(ctx)

	select {
	case <-bus.Ready():
		logx.Info("Redis relay bus subscribed.")
	case <-time.After(5 * time.Second):
		logx.Warn("Redis relay bus not subscribed yet; continuing.")
	}

	return bus, func() {
		if err := client.Close(); err != nil {
			logx.Error(err, "Redis client close error")
		}
	}
}
