package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/avelir/registration-service/internal/core/port"
	"github.com/avelir/registration-service/internal/infra/config"
	"github.com/avelir/registration-service/internal/infra/database"
	kafkainfra "github.com/avelir/registration-service/internal/infra/kafka"
	"github.com/avelir/registration-service/internal/infra/logger"
	"github.com/avelir/registration-service/internal/infra/mail"
	redisinfra "github.com/avelir/registration-service/internal/infra/redis"
	"github.com/avelir/registration-service/internal/infra/security"
	"github.com/avelir/registration-service/internal/infra/telemetry"
	postgresrepo "github.com/avelir/registration-service/internal/repository/postgres"
	redisrepo "github.com/avelir/registration-service/internal/repository/redis"
	"github.com/avelir/registration-service/internal/transport/http/middleware"
	"github.com/avelir/registration-service/internal/transport/http/routes"
	"github.com/avelir/registration-service/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	tracer *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	provider, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var tracer *telemetry.TracerProvider
	if cfg.Telemetry.OTLPEndpoint != "" {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			log.Warn("tracing disabled", zap.Error(err))
			tracer = nil
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "signup:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	mailer := mail.NewSMTPMailer(cfg.SMTP)
	notifier := mail.NewNotifier(mailer, nil, cfg.Registration.SiteName, cfg.Registration.BaseURL)

	workflow, err := buildWorkflow(cfg, repos, notifier, eventPublisher)
	if err != nil {
		_ = redisClient.Close()
		return nil, err
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Workflow:    workflow,
		Telemetry:   provider,
		Database:    pool,
		Cache:       redisClient,
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		tracer: tracer,
	}, nil
}

// buildWorkflow selects the registration strategy named in configuration.
func buildWorkflow(cfg *config.AppConfig, repos *postgresrepo.Repositories, notifier port.Notifier, publisher port.EventPublisher) (usecase.Workflow, error) {
	settings := usecase.Settings{
		Open:             cfg.Registration.Open,
		ActivationWindow: cfg.Registration.ActivationWindow,
		RequireTOS:       cfg.Registration.RequireTOS,
		ReservedNames:    cfg.Registration.ReservedNames,
		FreeEmailDomains: cfg.Registration.FreeEmailDomains,
	}
	passwordValidator := security.DefaultPasswordValidator()

	switch cfg.Registration.Workflow {
	case usecase.WorkflowSigned:
		signer := security.NewActivationSigner([]byte(cfg.Registration.SecretKey), cfg.Registration.Salt)
		return usecase.NewSignedWorkflow(repos.Accounts, signer, notifier, publisher, passwordValidator, settings), nil
	case usecase.WorkflowOneStep:
		return usecase.NewOneStepWorkflow(repos.Accounts, notifier, publisher, passwordValidator, settings), nil
	case usecase.WorkflowStoredKey:
		return usecase.NewStoredKeyWorkflow(repos.Accounts, repos.Activations, notifier, publisher, passwordValidator, settings), nil
	default:
		return nil, fmt.Errorf("unknown registration workflow %q", cfg.Registration.Workflow)
	}
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			_ = a.tracer.Shutdown(context.Background())
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting registration API",
		zap.String("env", a.cfg.App.Env),
		zap.String("workflow", a.cfg.Registration.Workflow),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
