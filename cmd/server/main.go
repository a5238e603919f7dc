package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/auth-service/internal/auth"
	"github.com/ayush/auth-service/internal/config"
	"github.com/ayush/auth-service/internal/logging"
	"github.com/ayush/auth-service/internal/metrics"
	"github.com/ayush/auth-service/internal/server"
	"github.com/ayush/auth-service/internal/store"
)

func main() {
	cfg := config.Load()
	logger := logging.New("auth-service", logging.ParseLevel(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	ctx := context.Background()

	// ── Credential store ─────────────────────────────────────
	var accounts auth.CredentialStore
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			fatal(logger, "postgres connect", err)
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			fatal(logger, "postgres migrate", err)
		}
		accounts = pgStore

	case config.DriverMongo:
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			fatal(logger, "mongo connect", err)
		}
		defer mongoClient.Disconnect(ctx)
		mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			fatal(logger, "mongo indexes", err)
		}
		accounts = mongoStore

	default:
		logger.Warn("using in-memory credential store; accounts are lost on restart")
		accounts = store.NewMemoryStore()
	}

	// ── Redis cache ──────────────────────────────────────────
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			fatal(logger, "redis connect", err)
		}
		defer rdb.Close()
		accounts = store.NewCachedStore(accounts, rdb, cfg.CacheTTL, logger)
	}

	// ── Auth ─────────────────────────────────────────────────
	authMetrics, err := metrics.NewAuth(prometheus.DefaultRegisterer)
	if err != nil {
		fatal(logger, "register metrics", err)
	}
	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost, cfg.HashConcurrency)
	if err != nil {
		fatal(logger, "password hasher", err)
	}
	hasher.WithObserver(authMetrics)
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		fatal(logger, "token issuer", err)
	}
	svc := auth.NewService(accounts, hasher, tokens, logger, auth.WithOutcomeObserver(authMetrics))

	sameSite, _ := cfg.SameSite()
	authHandler := auth.NewHandler(svc, logger, auth.CookieOptions{
		Secure:   cfg.CookieSecure,
		SameSite: sameSite,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: server.NewRouter(server.Deps{
			Auth:        authHandler,
			Tokens:      tokens,
			CORSOrigins: cfg.CORSOrigins,
			Metrics:     promhttp.Handler(),
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logging.LogError(context.Background(), logger, msg, err)
	os.Exit(1)
}
