package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"vgroup-backoffice/config"
	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/gateway/realtime"
	"vgroup-backoffice/internal/grpcserver"
	"vgroup-backoffice/internal/health"
	"vgroup-backoffice/internal/logger"
	"vgroup-backoffice/internal/services/admin"
	"vgroup-backoffice/internal/services/cms"
	"vgroup-backoffice/internal/services/commissions"
	"vgroup-backoffice/internal/services/dashboard"
	"vgroup-backoffice/internal/services/export"
	"vgroup-backoffice/internal/services/ledger"
	"vgroup-backoffice/internal/services/operations"
	"vgroup-backoffice/internal/services/user"
	"vgroup-backoffice/internal/services/workforce"
	"vgroup-backoffice/internal/storage"
	"vgroup-backoffice/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "backoffice: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "vgroup-backoffice")
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DB.PostgresDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Redis is optional; without it every read goes to Postgres.
	var redisClient *redis.Client
	if rdb, err := config.NewRedisClient(cfg.Redis); err != nil {
		log.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else {
		redisClient = rdb
		defer redisClient.Close()
	}
	appCache := cache.New(redisClient, log)

	tokens, err := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("invalid auth configuration: %w", err)
	}

	media, err := storage.NewMediaStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialise media storage: %w", err)
	}

	hub := realtime.NewHub(cfg.App.CORSOrigins, log.Named("realtime"))
	defer hub.Close()

	checker := health.NewChecker(db, appCache)

	svc := services{
		users:       user.NewService(db, appCache, tokens, log),
		workforce:   workforce.NewService(db, appCache, log),
		ledger:      ledger.NewService(db, appCache, log),
		commissions: commissions.NewService(db, appCache, log),
		operations:  operations.NewService(db, appCache, hub, log),
		dashboard:   dashboard.NewService(db, appCache, log),
		export:      export.NewService(db, log),
		reset:       admin.NewService(db, appCache, log),
		cms:         cms.NewService(db, appCache, media, log),
	}

	router, err := newRouter(cfg, log, tokens, svc, hub, checker)
	if err != nil {
		return err
	}
	if local, ok := media.(*storage.LocalStore); ok {
		router.Static(cfg.Storage.MediaURL, local.Dir())
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.App.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           600,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	grpcLis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		return fmt.Errorf("failed to listen for grpc: %w", err)
	}
	grpcSrv := grpcserver.New(checker, log.Named("grpc"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		if err := grpcSrv.Serve(grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go grpcSrv.Watch(ctx, 15*time.Second)

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case runErr = <-errCh:
		log.Error("server failed", zap.Error(runErr))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	grpcSrv.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("server stopped")
	return runErr
}
