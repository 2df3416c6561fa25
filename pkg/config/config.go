package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	POS          POSConfig
	Catalog      CatalogConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.POS.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PDV_APP_ENV" required:"true"`
	Port         string `envconfig:"PDV_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PDV_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PDV_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PDV_DB_DSN"`
	Driver string `envconfig:"PDV_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PDV_DB_HOST"`
	Port     int    `envconfig:"PDV_DB_PORT" default:"5432"`
	User     string `envconfig:"PDV_DB_USER"`
	Password string `envconfig:"PDV_DB_PASSWORD"`
	Name     string `envconfig:"PDV_DB_NAME"`
	SSLMode  string `envconfig:"PDV_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PDV_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PDV_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PDV_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PDV_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"PDV_REDIS_URL"`
	Address      string        `envconfig:"PDV_REDIS_ADDR"`
	Password     string        `envconfig:"PDV_REDIS_PASSWORD"`
	DB           int           `envconfig:"PDV_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PDV_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PDV_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PDV_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PDV_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"PDV_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"PDV_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PDV_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PDV_JWT_EXPIRATION_MINUTES" default:"720"`
}

// POSConfig tunes the transaction engine of every terminal.
type POSConfig struct {
	DebounceWindow   time.Duration `envconfig:"PDV_SCAN_DEBOUNCE_WINDOW" default:"500ms"`
	LookupTimeout    time.Duration `envconfig:"PDV_LOOKUP_TIMEOUT" default:"3s"`
	SequencerTimeout time.Duration `envconfig:"PDV_SEQUENCER_TIMEOUT" default:"3s"`
	PersistTimeout   time.Duration `envconfig:"PDV_PERSIST_TIMEOUT" default:"5s"`
	SequencerBackend string        `envconfig:"PDV_SEQUENCER_BACKEND" default:"redis"`
	HistoryLimit     int           `envconfig:"PDV_HISTORY_LIMIT" default:"20"`
}

func (p POSConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(p.SequencerBackend)) {
	case SequencerBackendRedis, SequencerBackendSQL:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvSequencerBackend, SequencerBackendRedis, SequencerBackendSQL)
	}
	if p.DebounceWindow < 0 {
		return fmt.Errorf("%s cannot be negative", EnvDebounceWindow)
	}
	return nil
}

// UsesRedisSequencer reports whether sale numbers come from the redis counter.
func (p POSConfig) UsesRedisSequencer() bool {
	return strings.EqualFold(strings.TrimSpace(p.SequencerBackend), SequencerBackendRedis)
}

type CatalogConfig struct {
	BaseURL string        `envconfig:"PDV_CATALOG_BASE_URL"`
	Token   string        `envconfig:"PDV_CATALOG_TOKEN"`
	Timeout time.Duration `envconfig:"PDV_CATALOG_HTTP_TIMEOUT" default:"5s"`
}

// Remote reports whether items are resolved through the external catalog service.
func (c CatalogConfig) Remote() bool {
	return strings.TrimSpace(c.BaseURL) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PDV_AUTO_MIGRATE" default:"false"`
	Metrics     bool `envconfig:"PDV_METRICS_ENABLED" default:"true"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"PDV_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	SalesTopic string `envconfig:"PDV_PUBSUB_SALES_TOPIC" default:"pdv-sales-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PDV_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PDV_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PDV_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range splitDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
