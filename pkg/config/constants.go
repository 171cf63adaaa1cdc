package config

// EnvPrefix scopes every configuration variable the service reads.
const EnvPrefix = "BREWHAVEN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside envconfig tags (tests, error messages).
const (
	EnvAppEnv                 = "BREWHAVEN_APP_ENV"
	EnvPort                   = "BREWHAVEN_APP_PORT"
	EnvDBDSN                  = "BREWHAVEN_DB_DSN"
	EnvDBHost                 = "BREWHAVEN_DB_HOST"
	EnvDBUser                 = "BREWHAVEN_DB_USER"
	EnvDBName                 = "BREWHAVEN_DB_NAME"
	EnvRedisURL               = "BREWHAVEN_REDIS_URL"
	EnvJWTSecret              = "BREWHAVEN_JWT_SECRET"
	EnvJWTIssuer              = "BREWHAVEN_JWT_ISSUER"
	EnvJWTExpMins             = "BREWHAVEN_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "BREWHAVEN_REFRESH_TOKEN_TTL_MINUTES"
	EnvGeminiAPIKey           = "BREWHAVEN_GEMINI_API_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
