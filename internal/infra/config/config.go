package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Workflow names selectable via registration.workflow.
const (
	WorkflowSigned    = "signed"
	WorkflowOneStep   = "one_step"
	WorkflowStoredKey = "stored_key"
)

type AppConfig struct {
	App          AppSettings          `mapstructure:"app"`
	Postgres     PostgresSettings     `mapstructure:"postgres"`
	Redis        RedisSettings        `mapstructure:"redis"`
	Kafka        KafkaSettings        `mapstructure:"kafka"`
	Registration RegistrationSettings `mapstructure:"registration"`
	SMTP         SMTPSettings         `mapstructure:"smtp"`
	Telemetry    TelemetrySettings    `mapstructure:"telemetry"`
	RateLimit    RateLimitSettings    `mapstructure:"rate_limit"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and TLS.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// KafkaSettings configures the Kafka producer.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// RegistrationSettings configures the signup workflows. SecretKey and Salt
// feed the activation token signer; ActivationWindow bounds how long an
// issued token or stored key remains redeemable.
type RegistrationSettings struct {
	Workflow         string        `mapstructure:"workflow"`
	Open             bool          `mapstructure:"open"`
	SecretKey        string        `mapstructure:"secret_key"`
	Salt             string        `mapstructure:"salt"`
	ActivationWindow time.Duration `mapstructure:"activation_window"`
	ReservedNames    []string      `mapstructure:"reserved_names"`
	FreeEmailDomains []string      `mapstructure:"free_email_domains"`
	RequireTOS       bool          `mapstructure:"require_tos"`
	SiteName         string        `mapstructure:"site_name"`
	BaseURL          string        `mapstructure:"base_url"`
}

// SMTPSettings configures outbound activation email delivery.
type SMTPSettings struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

// RateLimitSettings configures sliding-window limits per endpoint.
type RateLimitSettings struct {
	WindowDuration      time.Duration `mapstructure:"window_duration"`
	SignupMaxAttempts   int           `mapstructure:"signup_max_attempts"`
	ActivateMaxAttempts int           `mapstructure:"activate_max_attempts"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("SIGNUP")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"registration.workflow",
		"registration.open",
		"registration.secret_key",
		"registration.salt",
		"registration.activation_window",
		"registration.reserved_names",
		"registration.free_email_domains",
		"registration.require_tos",
		"registration.site_name",
		"registration.base_url",
		"smtp.host",
		"smtp.port",
		"smtp.username",
		"smtp.password",
		"smtp.from",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
		"rate_limit.window_duration",
		"rate_limit.signup_max_attempts",
		"rate_limit.activate_max_attempts",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Registration.SecretKey == "" {
		return nil, fmt.Errorf("registration.secret_key is required")
	}

	switch cfg.Registration.Workflow {
	case WorkflowSigned, WorkflowOneStep, WorkflowStoredKey:
	default:
		return nil, fmt.Errorf("unknown registration workflow %q", cfg.Registration.Workflow)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "registration-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "signup")
	v.SetDefault("postgres.password", "signup_password")
	v.SetDefault("postgres.database", "signup")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "signup")
	v.SetDefault("kafka.async", true)

	v.SetDefault("registration.workflow", WorkflowSigned)
	v.SetDefault("registration.open", true)
	v.SetDefault("registration.salt", "registration")
	// Seven days, the conventional ACCOUNT_ACTIVATION_DAYS.
	v.SetDefault("registration.activation_window", "168h")
	v.SetDefault("registration.require_tos", false)
	v.SetDefault("registration.site_name", "example.com")
	v.SetDefault("registration.base_url", "http://localhost:8080")

	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "noreply@example.com")

	v.SetDefault("telemetry.otlp_endpoint", "http://localhost:4318")
	v.SetDefault("telemetry.service_name", "registration-service")
	v.SetDefault("telemetry.sampling_rate", 1.0)

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.signup_max_attempts", 3)
	v.SetDefault("rate_limit.activate_max_attempts", 10)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "SIGNUP_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
