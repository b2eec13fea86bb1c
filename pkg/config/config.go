package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	DB          DBConfig
	Redis       RedisConfig
	Identity    IdentityConfig
	Stripe      StripeConfig
	Gemini      GeminiConfig
	AIRateLimit AIRateLimitConfig
	GCP         GCPConfig
	PubSub      PubSubConfig
	Feature     FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NICHESMITH_APP_ENV" required:"true"`
	Port         string `envconfig:"NICHESMITH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NICHESMITH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NICHESMITH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NICHESMITH_DB_DSN"`
	Driver string `envconfig:"NICHESMITH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NICHESMITH_DB_HOST"`
	LegacyPort     int    `envconfig:"NICHESMITH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NICHESMITH_DB_USER"`
	LegacyPassword string `envconfig:"NICHESMITH_DB_PASSWORD"`
	LegacyName     string `envconfig:"NICHESMITH_DB_NAME"`
	LegacySSLMode  string `envconfig:"NICHESMITH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NICHESMITH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NICHESMITH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NICHESMITH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NICHESMITH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NICHESMITH_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NICHESMITH_REDIS_ADDR"`
	Password     string        `envconfig:"NICHESMITH_REDIS_PASSWORD"`
	DB           int           `envconfig:"NICHESMITH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NICHESMITH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NICHESMITH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NICHESMITH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NICHESMITH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NICHESMITH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// IdentityConfig points at the external identity provider that issues the
// bearer tokens the API accepts.
type IdentityConfig struct {
	BaseURL        string        `envconfig:"NICHESMITH_IDENTITY_BASE_URL" required:"true"`
	ServiceKey     string        `envconfig:"NICHESMITH_IDENTITY_SERVICE_KEY" required:"true"`
	RequestTimeout time.Duration `envconfig:"NICHESMITH_IDENTITY_REQUEST_TIMEOUT" default:"10s"`
}

type StripeConfig struct {
	APIKey     string `envconfig:"NICHESMITH_STRIPE_API_KEY"`
	Secret     string `envconfig:"NICHESMITH_STRIPE_SECRET"`
	Env        string `envconfig:"NICHESMITH_STRIPE_ENV" default:"test"`
	SuccessURL string `envconfig:"NICHESMITH_STRIPE_SUCCESS_URL" default:"http://localhost:3000/dashboard?checkout=success"`
	CancelURL  string `envconfig:"NICHESMITH_STRIPE_CANCEL_URL" default:"http://localhost:3000/pricing"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type GeminiConfig struct {
	APIKey       string `envconfig:"NICHESMITH_GEMINI_API_KEY"`
	TextModel    string `envconfig:"NICHESMITH_GEMINI_TEXT_MODEL" default:"gemini-2.0-flash"`
	SearchModel  string `envconfig:"NICHESMITH_GEMINI_SEARCH_MODEL" default:"gemini-2.0-flash"`
	ArticleModel string `envconfig:"NICHESMITH_GEMINI_ARTICLE_MODEL" default:"gemini-2.5-pro"`
	ImageModel   string `envconfig:"NICHESMITH_GEMINI_IMAGE_MODEL" default:"gemini-2.0-flash-preview-image-generation"`
}

type AIRateLimitConfig struct {
	Window time.Duration `envconfig:"NICHESMITH_AI_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"NICHESMITH_AI_RATE_LIMIT_PER_USER" default:"20"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"NICHESMITH_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	BillingTopic string `envconfig:"NICHESMITH_PUBSUB_BILLING_TOPIC" default:"ns-billing-events"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool `envconfig:"NICHESMITH_AUTO_MIGRATE" default:"false"`
	PubSubEnabled bool `envconfig:"NICHESMITH_PUBSUB_ENABLED" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
