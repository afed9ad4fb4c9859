package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ayoubcharbel/telegram-bot/analytics"
	"github.com/ayoubcharbel/telegram-bot/backup"
	appCache "github.com/ayoubcharbel/telegram-bot/cache"
	"github.com/ayoubcharbel/telegram-bot/config"
	"github.com/ayoubcharbel/telegram-bot/handler"
	"github.com/ayoubcharbel/telegram-bot/leaderboard"
	"github.com/ayoubcharbel/telegram-bot/ledger"
	appLogger "github.com/ayoubcharbel/telegram-bot/logger"
	"github.com/ayoubcharbel/telegram-bot/middleware"
	"github.com/ayoubcharbel/telegram-bot/ratelimit"
	"github.com/ayoubcharbel/telegram-bot/store"
	"github.com/ayoubcharbel/telegram-bot/telegram"
)

func newStore(cfg config.Config) (store.Store, error) {
	switch cfg.Storage.Backend {
	case "file":
		return store.NewFileStore(cfg.Storage.FilePath,
			time.Duration(cfg.Storage.FlushIntervalSeconds)*time.Second)
	case "sqlite":
		return store.NewSQLiteStore(cfg.Storage.SQLitePath)
	case "redis":
		return store.NewRedisStore(store.RedisOptions{
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func main() {
	// Local development convenience; ignores a missing .env
	_ = godotenv.Load()

	appLogger.Initialize()

	cfg := config.MustLoadConfig()
	log.Info().Str("backend", cfg.Storage.Backend).Msg("Configuration loaded")

	recordStore, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize record store")
	}

	var leaderboardCache *appCache.Cache
	if cfg.Cache.Enabled {
		leaderboardCache, err = appCache.New(appCache.Options{
			MaxSizeMB:   cfg.Cache.MaxSizeMB,
			TTL:         time.Duration(cfg.Cache.TTLSeconds) * time.Second,
			CounterSize: cfg.Cache.CounterSize,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize cache")
		}
	} else {
		log.Info().Msg("Cache disabled in configuration")
	}

	activityLedger := ledger.New(recordStore)
	ranker := leaderboard.New(recordStore, leaderboardCache)
	tracker := analytics.New()
	backups := backup.New(recordStore, cfg.Backup.Dir, cfg.Backup.Keep)
	userLimiter := ratelimit.New(cfg.RateLimit.UserLimit,
		time.Duration(cfg.RateLimit.UserWindowMs)*time.Millisecond)

	bot, err := telegram.NewBot(telegram.Options{
		Token:       cfg.Telegram.Token,
		PollTimeout: cfg.Telegram.PollTimeout,
		Debug:       cfg.Telegram.Debug,
	}, activityLedger, ranker, tracker, userLimiter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	botCtx, stopBot := context.WithCancel(context.Background())
	go bot.Start(botCtx)

	// Admin surface
	adminHandler := handler.NewAdminHandler(ranker, tracker, backups, leaderboardCache)

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger)
	r.Use(rateLimiter.Limit)

	r.HandleFunc("/health", adminHandler.HealthCheck).Methods("GET")
	r.HandleFunc("/leaderboard", adminHandler.Leaderboard).Methods("GET")
	r.HandleFunc("/analytics", adminHandler.Analytics).Methods("GET")
	r.HandleFunc("/cache/metrics", adminHandler.CacheMetrics).Methods("GET")
	r.HandleFunc("/backups", adminHandler.CreateBackup).Methods("POST")
	r.HandleFunc("/backups", adminHandler.ListBackups).Methods("GET")
	r.HandleFunc("/backups/{name}/restore", adminHandler.RestoreBackup).Methods("POST")

	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("address", serverAddress).Msg("Starting admin server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start admin server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	stopBot()

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Admin server forced to shutdown")
	}

	if err := recordStore.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close record store")
	}

	leaderboardCache.Close()

	log.Info().Msg("Shutdown complete")
}
