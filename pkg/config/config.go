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
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Auth          AuthConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Geocoder      GeocoderConfig
	MailRelay     MailRelayConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FIBEROPS_APP_ENV" required:"true"`
	Port         string `envconfig:"FIBEROPS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FIBEROPS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FIBEROPS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FIBEROPS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"FIBEROPS_DB_DSN"`

	MaxOpenConns    int           `envconfig:"FIBEROPS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FIBEROPS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FIBEROPS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FIBEROPS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FIBEROPS_REDIS_URL"`
	Address      string        `envconfig:"FIBEROPS_REDIS_ADDR"`
	Password     string        `envconfig:"FIBEROPS_REDIS_PASSWORD"`
	DB           int           `envconfig:"FIBEROPS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FIBEROPS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FIBEROPS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FIBEROPS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FIBEROPS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FIBEROPS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FIBEROPS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FIBEROPS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"FIBEROPS_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"FIBEROPS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// AuthConfig scopes sign-in to the corporate mail domain.
type AuthConfig struct {
	AllowedMailDomain string `envconfig:"FIBEROPS_AUTH_ALLOWED_MAIL_DOMAIN" default:"northfiber.net"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FIBEROPS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FIBEROPS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FIBEROPS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FIBEROPS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FIBEROPS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FIBEROPS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FIBEROPS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FIBEROPS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FIBEROPS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FIBEROPS_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FIBEROPS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FIBEROPS_FEATURE_AUTO_MIGRATE" default:"false"`
}

type GeocoderConfig struct {
	APIKey         string        `envconfig:"FIBEROPS_GEOCODER_API_KEY"`
	BaseURL        string        `envconfig:"FIBEROPS_GEOCODER_BASE_URL"`
	Region         string        `envconfig:"FIBEROPS_GEOCODER_REGION" default:"us"`
	RequestStagger time.Duration `envconfig:"FIBEROPS_GEOCODER_REQUEST_STAGGER" default:"250ms"`
	RetryBackoff   time.Duration `envconfig:"FIBEROPS_GEOCODER_RETRY_BACKOFF" default:"2s"`
}

type MailRelayConfig struct {
	Endpoint string `envconfig:"FIBEROPS_MAIL_RELAY_ENDPOINT"`
	APIKey   string `envconfig:"FIBEROPS_MAIL_RELAY_API_KEY"`
	From     string `envconfig:"FIBEROPS_MAIL_FROM" default:"office@northfiber.net"`
	// CCList is merged into every outbound welcome mail by set union.
	CCList []string `envconfig:"FIBEROPS_MAIL_CC_LIST" default:"office@northfiber.net,installs@northfiber.net"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FIBEROPS_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"FIBEROPS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"FIBEROPS_PUBSUB_DOMAIN_TOPIC" default:"fo-domain-events"`
	DomainSubscription string `envconfig:"FIBEROPS_PUBSUB_DOMAIN_SUBSCRIPTION"`
	MailTopic          string `envconfig:"FIBEROPS_PUBSUB_MAIL_TOPIC" default:"fo-mail-events"`
	MailSubscription   string `envconfig:"FIBEROPS_PUBSUB_MAIL_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"FIBEROPS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"FIBEROPS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"FIBEROPS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"FIBEROPS_OUTBOX_IDEMPOTENCY_TTL" default:"24h"`
}
