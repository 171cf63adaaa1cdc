package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Gemini        GeminiConfig
	CORS          CORSConfig
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
	Env          string `envconfig:"BREWHAVEN_APP_ENV" required:"true"`
	Port         string `envconfig:"BREWHAVEN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BREWHAVEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BREWHAVEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BREWHAVEN_DB_DSN"`
	Driver string `envconfig:"BREWHAVEN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BREWHAVEN_DB_HOST"`
	LegacyPort     int    `envconfig:"BREWHAVEN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BREWHAVEN_DB_USER"`
	LegacyPassword string `envconfig:"BREWHAVEN_DB_PASSWORD"`
	LegacyName     string `envconfig:"BREWHAVEN_DB_NAME"`
	LegacySSLMode  string `envconfig:"BREWHAVEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BREWHAVEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BREWHAVEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BREWHAVEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BREWHAVEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BREWHAVEN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BREWHAVEN_REDIS_ADDR"`
	Password     string        `envconfig:"BREWHAVEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"BREWHAVEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BREWHAVEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BREWHAVEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BREWHAVEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BREWHAVEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BREWHAVEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BREWHAVEN_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BREWHAVEN_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"BREWHAVEN_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"BREWHAVEN_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BREWHAVEN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BREWHAVEN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BREWHAVEN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BREWHAVEN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BREWHAVEN_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BREWHAVEN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"BREWHAVEN_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BREWHAVEN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"BREWHAVEN_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"BREWHAVEN_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"BREWHAVEN_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BREWHAVEN_AUTO_MIGRATE" default:"false"`
}

type GeminiConfig struct {
	APIKey          string        `envconfig:"BREWHAVEN_GEMINI_API_KEY"`
	BaseURL         string        `envconfig:"BREWHAVEN_GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	Model           string        `envconfig:"BREWHAVEN_GEMINI_MODEL" default:"gemini-pro"`
	Timeout         time.Duration `envconfig:"BREWHAVEN_GEMINI_TIMEOUT" default:"30s"`
	MaxOutputTokens int           `envconfig:"BREWHAVEN_GEMINI_MAX_OUTPUT_TOKENS" default:"500"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BREWHAVEN_CORS_ALLOWED_ORIGINS" default:"*"`
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
