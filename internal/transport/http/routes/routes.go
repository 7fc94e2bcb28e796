package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/avelir/registration-service/internal/infra/config"
	"github.com/avelir/registration-service/internal/infra/telemetry"
	"github.com/avelir/registration-service/internal/transport/http/handlers"
	"github.com/avelir/registration-service/internal/transport/http/middleware"
	"github.com/avelir/registration-service/internal/usecase"
)

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Workflow    usecase.Workflow
	Telemetry   *telemetry.Provider
	Database    handlers.DatabaseChecker
	Cache       handlers.CacheChecker
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err == nil {
		r.Use(metrics.Handler())
	} else if deps.Logger != nil {
		deps.Logger.Warn("http metrics disabled", zap.Error(err))
	}

	healthHandler := handlers.NewHealthHandler(deps.Database, deps.Cache)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		registrationHandler := handlers.NewRegistrationHandler(deps.Workflow, deps.Telemetry)
		activationHandler := handlers.NewActivationHandler(deps.Workflow, deps.Telemetry)

		signupMiddlewares := rateLimitRule(deps, "signup_ip", deps.Config.RateLimit.SignupMaxAttempts)
		api.POST("/signup", append(signupMiddlewares, registrationHandler.Signup)...)

		activateMiddlewares := rateLimitRule(deps, "activate_ip", deps.Config.RateLimit.ActivateMaxAttempts)
		api.GET("/activate/:key", append(activateMiddlewares, activationHandler.Activate)...)
	}

	return r
}

func rateLimitRule(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
