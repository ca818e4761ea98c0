package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"vgroup-backoffice/config"
	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/logger"
	"vgroup-backoffice/internal/seed"
	"vgroup-backoffice/internal/services/commissions"
	"vgroup-backoffice/internal/services/ledger"
	"vgroup-backoffice/internal/services/operations"
	"vgroup-backoffice/internal/services/user"
	"vgroup-backoffice/internal/services/workforce"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "vgroup-seed")
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DB.PostgresDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// With redis reachable, seeding also drops stale dashboard caches.
	var redisClient *redis.Client
	if rdb, err := config.NewRedisClient(cfg.Redis); err != nil {
		log.Warn("redis unavailable, skipping cache invalidation", zap.Error(err))
	} else {
		redisClient = rdb
		defer redisClient.Close()
	}
	appCache := cache.New(redisClient, log)

	svc := seed.Services{
		Users:       user.NewService(db, appCache, nil, log),
		Workforce:   workforce.NewService(db, appCache, log),
		Ledger:      ledger.NewService(db, appCache, log),
		Commissions: commissions.NewService(db, appCache, log),
		Operations:  operations.NewService(db, appCache, nil, log),
	}

	opts := seed.DefaultOptions()
	opts.AdminEmail = cfg.Seed.AdminEmail
	opts.AdminPassword = cfg.Seed.AdminPassword
	opts.AdminName = cfg.Seed.AdminName

	sum, err := seed.New(db, svc, seed.NewSampler(cfg.Seed.RandomSeed), log).Run(ctx, opts)
	if err != nil {
		return err
	}

	log.Info("seed complete",
		zap.Bool("admin_created", sum.AdminCreated),
		zap.Int("provinces", sum.Provinces),
		zap.Int("districts", sum.Districts),
		zap.Int("agents", sum.Agents),
		zap.Int("clients", sum.Clients),
		zap.Int("workers", sum.Workers),
		zap.Int("loans", sum.Loans),
		zap.Int("payments", sum.Payments),
		zap.Int("commissions", sum.Commissions),
		zap.Int("sos_alerts", sum.SosAlerts),
		zap.Int("orders", sum.Orders),
		zap.Int("documents", sum.Documents))
	return nil
}
