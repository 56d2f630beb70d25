package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Stripe       StripeConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Checkout     CheckoutConfig
	Webhook      WebhookConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WAVECRATE_APP_ENV" required:"true"`
	Port         string `envconfig:"WAVECRATE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"WAVECRATE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WAVECRATE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"WAVECRATE_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"WAVECRATE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WAVECRATE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WAVECRATE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WAVECRATE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WAVECRATE_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"WAVECRATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WAVECRATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WAVECRATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WAVECRATE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WAVECRATE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey         string `envconfig:"WAVECRATE_STRIPE_API_KEY" required:"true"`
	PublishableKey string `envconfig:"WAVECRATE_STRIPE_PUBLISHABLE_KEY"`
	WebhookSecret  string `envconfig:"WAVECRATE_STRIPE_WEBHOOK_SECRET" required:"true"`
	Env            string `envconfig:"WAVECRATE_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type GCPConfig struct {
	CredentialsJSON        string `envconfig:"WAVECRATE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"WAVECRATE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"WAVECRATE_GCS_BUCKET_NAME" required:"true"`
	DownloadURLExpiry time.Duration `envconfig:"WAVECRATE_GCS_DOWNLOAD_URL_EXPIRY" default:"15m"`
}

type CheckoutConfig struct {
	IntentRateWindow time.Duration `envconfig:"WAVECRATE_CHECKOUT_RATE_WINDOW" default:"1m"`
	IntentRateLimit  int64         `envconfig:"WAVECRATE_CHECKOUT_RATE_LIMIT" default:"30"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"WAVECRATE_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WAVECRATE_AUTO_MIGRATE" default:"false"`
}
