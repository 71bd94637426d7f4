package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FARMCART"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv                 = "FARMCART_APP_ENV"
	EnvPort                   = "FARMCART_APP_PORT"
	EnvDBDSN                  = "FARMCART_DB_DSN"
	EnvDBHost                 = "FARMCART_DB_HOST"
	EnvDBUser                 = "FARMCART_DB_USER"
	EnvDBName                 = "FARMCART_DB_NAME"
	EnvRedisURL               = "FARMCART_REDIS_URL"
	EnvJWTSecret              = "FARMCART_JWT_SECRET"
	EnvJWTIssuer              = "FARMCART_JWT_ISSUER"
	EnvJWTExpMins             = "FARMCART_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "FARMCART_REFRESH_TOKEN_TTL_MINUTES"
	EnvSSLCommerzStoreID      = "FARMCART_SSLCOMMERZ_STORE_ID"
	EnvSSLCommerzStorePass    = "FARMCART_SSLCOMMERZ_STORE_PASSWD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	SSLCommerz    SSLCommerzConfig
	Cron          CronConfig
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
	Env          string `envconfig:"FARMCART_APP_ENV" required:"true"`
	Port         string `envconfig:"FARMCART_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"FARMCART_APP_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"FARMCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FARMCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FARMCART_DB_DSN"`
	Driver string `envconfig:"FARMCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FARMCART_DB_HOST"`
	LegacyPort     int    `envconfig:"FARMCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FARMCART_DB_USER"`
	LegacyPassword string `envconfig:"FARMCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"FARMCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"FARMCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FARMCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FARMCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FARMCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FARMCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver is selected. SQLite is only
// meant for local development.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"FARMCART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FARMCART_REDIS_ADDR"`
	Password     string        `envconfig:"FARMCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"FARMCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FARMCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FARMCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FARMCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FARMCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FARMCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FARMCART_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FARMCART_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"FARMCART_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"FARMCART_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FARMCART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FARMCART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FARMCART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FARMCART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FARMCART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FARMCART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FARMCART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FARMCART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FARMCART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FARMCART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FARMCART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FARMCART_AUTO_MIGRATE" default:"false"`
}

// SSLCommerzConfig carries the gateway store credentials and callback surface.
type SSLCommerzConfig struct {
	StoreID       string        `envconfig:"FARMCART_SSLCOMMERZ_STORE_ID"`
	StorePassword string        `envconfig:"FARMCART_SSLCOMMERZ_STORE_PASSWD"`
	Sandbox       bool          `envconfig:"FARMCART_SSLCOMMERZ_SANDBOX" default:"true"`
	Timeout       time.Duration `envconfig:"FARMCART_SSLCOMMERZ_TIMEOUT" default:"30s"`

	SuccessPath string `envconfig:"FARMCART_SSLCOMMERZ_SUCCESS_PATH" default:"/api/v1/webhooks/sslcommerz/success"`
	FailPath    string `envconfig:"FARMCART_SSLCOMMERZ_FAIL_PATH" default:"/api/v1/webhooks/sslcommerz/fail"`
	CancelPath  string `envconfig:"FARMCART_SSLCOMMERZ_CANCEL_PATH" default:"/api/v1/webhooks/sslcommerz/cancel"`
	IPNPath     string `envconfig:"FARMCART_SSLCOMMERZ_IPN_PATH" default:"/api/v1/webhooks/sslcommerz/ipn"`
}

// HasCredentials reports whether the store credentials are configured.
func (s SSLCommerzConfig) HasCredentials() bool {
	return strings.TrimSpace(s.StoreID) != "" && strings.TrimSpace(s.StorePassword) != ""
}

type CronConfig struct {
	Interval time.Duration `envconfig:"FARMCART_CRON_INTERVAL" default:"1h"`
	LockKey  string        `envconfig:"FARMCART_CRON_LOCK_KEY" default:"farmcart:cron:lock"`
	LockTTL  time.Duration `envconfig:"FARMCART_CRON_LOCK_TTL" default:"55m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when FARMCART_DB_DRIVER=sqlite", EnvDBDSN)
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
