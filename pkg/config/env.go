package config

const EnvPrefix = "PDV"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	SequencerBackendRedis = "redis"
	SequencerBackendSQL   = "sql"
)

const (
	EnvAppEnv   = "PDV_APP_ENV"
	EnvPort     = "PDV_APP_PORT"
	EnvLogLevel = "PDV_LOG_LEVEL"

	EnvDBDSN    = "PDV_DB_DSN"
	EnvDBDriver = "PDV_DB_DRIVER"
	EnvDBHost   = "PDV_DB_HOST"
	EnvDBUser   = "PDV_DB_USER"
	EnvDBName   = "PDV_DB_NAME"

	EnvRedisURL = "PDV_REDIS_URL"

	EnvJWTSecret  = "PDV_JWT_SECRET"
	EnvJWTIssuer  = "PDV_JWT_ISSUER"
	EnvJWTExpMins = "PDV_JWT_EXPIRATION_MINUTES"

	EnvDebounceWindow   = "PDV_SCAN_DEBOUNCE_WINDOW"
	EnvLookupTimeout    = "PDV_LOOKUP_TIMEOUT"
	EnvPersistTimeout   = "PDV_PERSIST_TIMEOUT"
	EnvSequencerBackend = "PDV_SEQUENCER_BACKEND"

	EnvCatalogBaseURL = "PDV_CATALOG_BASE_URL"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
