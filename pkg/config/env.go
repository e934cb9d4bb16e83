package config

// EnvPrefix is handed to envconfig; every field also carries its full variable name.
const EnvPrefix = "RETAIL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "RETAIL_APP_ENV"
	EnvPort     = "RETAIL_APP_PORT"
	EnvLogLevel = "RETAIL_LOG_LEVEL"

	EnvDBDSN    = "RETAIL_DB_DSN"
	EnvDBDriver = "RETAIL_DB_DRIVER"
	EnvDBHost   = "RETAIL_DB_HOST"
	EnvDBPort   = "RETAIL_DB_PORT"
	EnvDBUser   = "RETAIL_DB_USER"
	EnvDBName   = "RETAIL_DB_NAME"
	EnvDBPass   = "RETAIL_DB_PASSWORD"

	EnvRedisURL = "RETAIL_REDIS_URL"

	EnvAutoMigrate    = "RETAIL_AUTO_MIGRATE"
	EnvIdempotencyTTL = "RETAIL_IDEMPOTENCY_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
