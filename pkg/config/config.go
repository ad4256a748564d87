package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "harborpay"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "HARBORPAY_DB_DSN"
	EnvDBHost = "HARBORPAY_DB_HOST"
	EnvDBUser = "HARBORPAY_DB_USER"
	EnvDBName = "HARBORPAY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Payments     PaymentsConfig
	Square       SquareConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"HARBORPAY_APP_ENV" required:"true"`
	Port         string `envconfig:"HARBORPAY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HARBORPAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HARBORPAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HARBORPAY_DB_DSN"`
	Driver string `envconfig:"HARBORPAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HARBORPAY_DB_HOST"`
	LegacyPort     int    `envconfig:"HARBORPAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HARBORPAY_DB_USER"`
	LegacyPassword string `envconfig:"HARBORPAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"HARBORPAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"HARBORPAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HARBORPAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HARBORPAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HARBORPAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HARBORPAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HARBORPAY_REDIS_URL"`
	Address      string        `envconfig:"HARBORPAY_REDIS_ADDR"`
	Password     string        `envconfig:"HARBORPAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"HARBORPAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HARBORPAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HARBORPAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HARBORPAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HARBORPAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HARBORPAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PaymentsConfig carries registry-wide policy defaults.
type PaymentsConfig struct {
	// AutoCaptureDefault applies when a payment method leaves auto_capture unset.
	AutoCaptureDefault bool `envconfig:"HARBORPAY_PAYMENTS_AUTO_CAPTURE_DEFAULT" default:"false"`
	// Currency is the ISO 4217 code used for gateway amounts.
	Currency string `envconfig:"HARBORPAY_PAYMENTS_CURRENCY" default:"USD"`
}

type SquareConfig struct {
	AccessToken        string `envconfig:"HARBORPAY_SQUARE_ACCESS_TOKEN"`
	SandboxAccessToken string `envconfig:"HARBORPAY_SQUARE_SANDBOX_ACCESS_TOKEN"`
	LocationID         string `envconfig:"HARBORPAY_SQUARE_LOCATION_ID"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HARBORPAY_FEATURE_AUTO_MIGRATE" default:"false"`
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
