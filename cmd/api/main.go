package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aman-1206/Joblink/internal/api"
	"github.com/Aman-1206/Joblink/internal/api/auth"
	"github.com/Aman-1206/Joblink/internal/api/scheduler"
	"github.com/Aman-1206/Joblink/internal/config"
	"github.com/Aman-1206/Joblink/internal/pkg/cooldown"
	"github.com/Aman-1206/Joblink/internal/pkg/logger"
	"github.com/Aman-1206/Joblink/internal/pkg/metrics"
	"github.com/Aman-1206/Joblink/internal/pkg/notify"
	"github.com/Aman-1206/Joblink/internal/pkg/ratelimit"
	"github.com/Aman-1206/Joblink/internal/pkg/storage"
	"github.com/Aman-1206/Joblink/internal/pkg/token"
	"github.com/Aman-1206/Joblink/internal/service"
	"github.com/Aman-1206/Joblink/internal/store"

	"github.com/redis/go-redis/v9"
)

// main starts the JobLink API: it loads config, opens the store and
// optional redis, seeds reference data, then serves until SIGINT/SIGTERM.
func main() {
	configPath := flag.String("config", "", "path to config.json (default configs/config.json)")
	writeConfig := flag.String("write-config", "", "write the effective config to this path and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *writeConfig != "" {
		if err := config.Save(*writeConfig, cfg); err != nil {
			log.Fatalf("write config: %v", err)
		}
		log.Printf("config written to %s", *writeConfig)
		return
	}

	appLogger := logger.NewDefault(cfg.App.LogLevel)
	metrics.InitMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("open store failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.App.SeedData {
		if err := store.Seed(ctx, st, cfg.Security.AdminEmail, cfg.Security.AdminPassword); err != nil {
			appLogger.Error("seed data failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	scheduler.NewJanitor(st, appLogger, cfg.Security.CodeSweepInterval).Start(ctx)

	rdb := openRedis(ctx, cfg.Redis, appLogger)
	tokens := token.NewIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)

	deps := service.Deps{
		Store:   st,
		Tokens:  tokens,
		Sender:  notify.NewEmailNotifier(&cfg.Email, appLogger, cfg.App.Env == "local", cfg.Security.OTPTTL),
		Logger:  appLogger,
		CodeTTL: cfg.Security.OTPTTL,
	}
	opts := api.Options{Tokens: tokens, Redis: rdb}

	if rdb != nil && cfg.Security.OTPResendInterval > 0 {
		deps.Cooldown = cooldown.New(rdb, "otp", cfg.Security.OTPResendInterval)
	}
	if rdb != nil && cfg.RateLimit.Rate > 0 {
		opts.Limiter = ratelimit.NewRedisRateLimiter(rdb, appLogger, "auth", cfg.RateLimit.Rate, cfg.RateLimit.Burst)
	}

	backend, uploadDir, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		appLogger.Error("init storage failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	deps.Uploader = storage.NewManager(backend)
	opts.UploadDir = uploadDir

	svc := service.New(deps)
	opts.Service = svc
	if p, ok := st.(api.Pinger); ok {
		opts.DB = p
	}
	if cfg.OAuthEnabled() {
		opts.Google = auth.GoogleConfig(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.OAuth.GoogleRedirectURL)
	}

	srv := api.NewServer(cfg, appLogger, opts)
	defer func() {
		if err := srv.Close(); err != nil {
			appLogger.Error("close resources failed", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Run(ctx); err != nil {
		appLogger.Error("server run failed", slog.String("error", err.Error()))
		return
	}
	appLogger.Info("api server stopped")
}

// openRedis returns nil when redis is not configured or unreachable; the
// rate limiter and resend cooldown are then disabled.
func openRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled",
			slog.String("addr", cfg.Addr),
			slog.String("error", err.Error()))
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// openStorage returns the upload backend and, for local storage, the
// directory to serve statically.
func openStorage(ctx context.Context, cfg config.StorageConfig) (storage.Backend, string, error) {
	if cfg.Backend == "s3" {
		b, err := storage.NewS3Backend(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		return b, "", nil
	}
	b, err := storage.NewLocalBackend(cfg.Dir, cfg.PublicPrefix)
	if err != nil {
		return nil, "", err
	}
	return b, b.Dir(), nil
}
