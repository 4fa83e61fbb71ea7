package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/dkeye/roomgate/internal/adapters/bbb"
	router "github.com/dkeye/roomgate/internal/adapters/http"
	"github.com/dkeye/roomgate/internal/adapters/sched"
	"github.com/dkeye/roomgate/internal/adapters/state"
	"github.com/dkeye/roomgate/internal/adapters/store"
	"github.com/dkeye/roomgate/internal/app"
	"github.com/dkeye/roomgate/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := gorm.Open(mysql.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	roomStore := store.NewRoomStore(db)
	if err := roomStore.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to reach redis")
	}
	cache := state.NewStatusCache(rdb, cfg.StatusTTL)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}
	scheduler := sched.NewScheduler(redisOpt)
	defer scheduler.Close()

	// Properly wire the orchestrator with the remote client, stores and policy.
	orch := &app.Orchestrator{
		Client:         bbb.NewClient(cfg.ServerURL, cfg.ServerSecret),
		Store:          roomStore,
		Cache:          cache,
		Policy:         app.KeyPolicy{},
		Sched:          scheduler,
		ReconcileDelay: cfg.ReconcileDelay,
		MobileScheme:   cfg.MobileScheme,
	}

	worker := sched.NewWorkerServer(redisOpt, orch)
	if err := worker.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start worker")
	}

	r := router.SetupRouter(cfg, &router.Handlers{Orch: orch, Store: roomStore, Cache: cache})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Roomgate server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	worker.Shutdown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
