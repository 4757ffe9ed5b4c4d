// Devserver for the otpkit verification service. Wires storage, delivery and
// the HTTP surface from environment configuration.
//
// Usage:
//
//	go run otpkit-devserver.go serve
//	go run otpkit-devserver.go migrate
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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	otphttp "github.com/sikad-ph/otpkit/adapters/http"
	"github.com/sikad-ph/otpkit/core"
	"github.com/sikad-ph/otpkit/delivery/itextmo"
	"github.com/sikad-ph/otpkit/delivery/twilioverify"
	"github.com/sikad-ph/otpkit/docstore"
	memdocstore "github.com/sikad-ph/otpkit/docstore/memory"
	pgdocstore "github.com/sikad-ph/otpkit/docstore/postgres"
	redislimiter "github.com/sikad-ph/otpkit/ratelimit/redis"
	memorystore "github.com/sikad-ph/otpkit/storage/memory"
	redisstore "github.com/sikad-ph/otpkit/storage/redis"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := core.FromEnv()
	if err := cfg.Validate(); err != nil {
		if core.IsDevEnvironment() {
			log.Warn("config incomplete, continuing in dev", zap.Error(err))
		} else {
			log.Fatal("config invalid", zap.Error(err))
		}
	}

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "serve":
		runServe(cfg, log)
	case "migrate":
		runMigrate(cfg, log)
	default:
		log.Fatal("unknown command", zap.String("command", cmd))
	}
}

func runServe(cfg core.Config, log *zap.Logger) {
	ctx := context.Background()

	var docs docstore.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres connect", zap.Error(err))
		}
		defer pool.Close()
		docs = pgdocstore.New(pool)
	} else {
		log.Warn("DATABASE_URL unset, user records and alert log are in-memory")
		docs = memdocstore.New()
	}

	var rdb *redis.Client
	var store core.PendingStore
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer rdb.Close()
		store = redisstore.NewPendingStore(rdb)
	} else {
		log.Warn("REDIS_ADDR unset, pending verifications are in-memory")
		store = memorystore.NewPendingStore()
	}

	opts := core.Options{
		TTL:         cfg.TTL,
		MaxAttempts: cfg.MaxAttempts,
		CodeLength:  cfg.CodeLength,
		Brand:       cfg.Brand,
	}

	var svc *core.Service
	switch cfg.Provider {
	case core.ProviderTwilio:
		opts.Provider = "Twilio Verify"
		svc = core.NewService(opts).
			WithLogger(log).
			WithDocStore(docs).
			WithUserLink(core.NewUserLinkResolver(docs)).
			WithNormalizer(core.DefaultNormalizer(core.TargetE164)).
			WithHostedVerifier(twilioverify.New(
				cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioVerifyServiceSID))
	default:
		opts.Provider = "iTextMo"
		sender := itextmo.New(cfg.ITextMoEmail, cfg.ITextMoPassword, cfg.ITextMoAPICode).
			WithSenderID(cfg.ITextMoSenderID).
			WithAPIURL(cfg.ITextMoAPIURL).
			WithDryRun(cfg.SMSDryRun).
			WithLogger(log)
		svc = core.NewService(opts).
			WithLogger(log).
			WithPendingStore(store).
			WithDocStore(docs).
			WithUserLink(core.NewUserLinkResolver(docs)).
			WithNormalizer(core.DefaultNormalizer(core.TargetLocal)).
			WithSMSSender(sender)
	}

	if stop := svc.StartReaper(time.Minute); stop != nil {
		defer stop()
	}

	api := otphttp.NewService(svc)
	if rdb != nil {
		api = api.WithRateLimiter(redislimiter.New(rdb))
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.APIHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("provider", svc.Provider()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}

func runMigrate(cfg core.Config, log *zap.Logger) {
	if cfg.DatabaseURL == "" {
		log.Fatal("migrate requires DATABASE_URL")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pool.Close()
	if _, err := pool.Exec(ctx, pgdocstore.Schema); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	log.Info("schema applied")
}
