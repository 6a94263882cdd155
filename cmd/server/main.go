package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/account"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/config"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/db"
	internalhttp "github.com/hack4impact-upenn/celf-sp25-sub001/internal/http"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/invite"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/jobs"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/notify"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/repository"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/request"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, speaker cache disabled: %v", err)
			redisClient = nil
		}
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.SMTPHost != "" {
		notifier = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.FrontendURL)
	}

	store := repository.NewStore(pool)
	invites := invite.NewManager(store, cfg.InviteTokenTTL)
	accounts := account.NewProvisioner(store, invites, notifier, cfg.SkipVerification, cfg.ResetTokenTTL)
	deleter := account.NewCoordinator(store)
	requests := request.NewEngine(store)

	jobs.StartReconcileJob(ctx, cfg, store)

	server := internalhttp.NewServer(cfg, store, invites, accounts, deleter, requests, notifier, redisClient)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("celf server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
