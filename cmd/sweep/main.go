// Command sweep removes registrations that were never completed: expired
// pending activation records and inactive accounts whose activation window
// has elapsed. Intended to run from cron or a Kubernetes CronJob.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/avelir/registration-service/internal/infra/config"
	"github.com/avelir/registration-service/internal/infra/database"
	"github.com/avelir/registration-service/internal/infra/logger"
	postgresrepo "github.com/avelir/registration-service/internal/repository/postgres"
	"github.com/avelir/registration-service/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() {
		_ = zlog.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, zlog)
	if err != nil {
		zlog.Fatal("failed to init postgres", zap.Error(err))
	}
	defer pool.Close()

	repos := postgresrepo.NewRepositories(pool)

	sweeper := usecase.NewSweepService(repos.Accounts, repos.Activations, cfg.Registration.ActivationWindow)
	result, err := sweeper.Sweep(ctx)
	if err != nil {
		zlog.Fatal("sweep failed", zap.Error(err))
	}

	zlog.Info("sweep completed",
		zap.Int("activation_records", result.ActivationRecords),
		zap.Int("accounts", result.Accounts),
	)
}
