package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hahu_backend/internal/config"
	"hahu_backend/internal/db"
	httpServer "hahu_backend/internal/http"
	"hahu_backend/internal/logger"
	"hahu_backend/internal/repository"
	"hahu_backend/internal/repository/memstore"
	"hahu_backend/internal/service"
	"hahu_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	var store repository.Store
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		store = memstore.New(memstore.WithClock(service.NewClock(cfg.Location)))
	} else {
		dbPool := db.Connect(cfg.DatabaseURL)
		defer dbPool.Close()
		store = repository.NewPgStore(dbPool)
	}

	rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}

	var locker service.Locker
	if rdb != nil {
		locker = service.NewRedisLocker(rdb, cfg.LockTTL, cfg.LockWait)
	} else {
		logger.Warn("payment lock is process-local; run a single instance without redis")
		locker = service.NewLocalLocker(cfg.LockWait)
	}

	services := service.NewServices(store, locker, service.NewClock(cfg.Location))
	hub := ws.NewHub()

	sched, err := service.StartScheduler(services.Reconciler, services.Leaderboard, hub, service.SchedulerConfig{
		ReconcileInterval:   cfg.ReconcileInterval,
		LeaderboardInterval: cfg.LeaderboardInterval,
		LeaderboardSize:     cfg.LeaderboardSize,
	})
	if err != nil {
		logger.Fatal("failed to start scheduler", "error", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	httpServer.RegisterRoutes(r, httpServer.Deps{
		Store:    store,
		Services: services,
		Redis:    rdb,
		Hub:      hub,
		Config:   cfg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", "port", cfg.AppPort, "storage", cfg.Storage, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
	}
	if err := sched.Shutdown(); err != nil {
		logger.Warn("scheduler shutdown", "error", err)
	}

	logger.Info("server exited")
}
