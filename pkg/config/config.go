package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Vault    VaultConfig
	Razorpay RazorpayConfig
	Escrow   EscrowConfig
	Flags    FeatureFlagsConfig
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
	Env          string `envconfig:"ACCSWAP_APP_ENV" required:"true"`
	Port         string `envconfig:"ACCSWAP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ACCSWAP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ACCSWAP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ACCSWAP_DB_DSN"`
	Driver string `envconfig:"ACCSWAP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ACCSWAP_DB_HOST"`
	LegacyPort     int    `envconfig:"ACCSWAP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ACCSWAP_DB_USER"`
	LegacyPassword string `envconfig:"ACCSWAP_DB_PASSWORD"`
	LegacyName     string `envconfig:"ACCSWAP_DB_NAME"`
	LegacySSLMode  string `envconfig:"ACCSWAP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ACCSWAP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ACCSWAP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ACCSWAP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ACCSWAP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ACCSWAP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ACCSWAP_REDIS_ADDR"`
	Password     string        `envconfig:"ACCSWAP_REDIS_PASSWORD"`
	DB           int           `envconfig:"ACCSWAP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ACCSWAP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ACCSWAP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ACCSWAP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ACCSWAP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ACCSWAP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ACCSWAP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ACCSWAP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ACCSWAP_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ACCSWAP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ACCSWAP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ACCSWAP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ACCSWAP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ACCSWAP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ACCSWAP_ARGON_KEY_LEN" default:"32"`
}

// VaultConfig holds the key material for encrypting account credentials at rest.
type VaultConfig struct {
	CredentialKey string `envconfig:"ACCSWAP_CREDENTIAL_KEY" required:"true"`
}

// RazorpayConfig is injected into the gateway client at construction time;
// business logic never reads gateway secrets from ambient process state.
type RazorpayConfig struct {
	KeyID         string        `envconfig:"ACCSWAP_RAZORPAY_KEY_ID" required:"true"`
	KeySecret     string        `envconfig:"ACCSWAP_RAZORPAY_KEY_SECRET" required:"true"`
	WebhookSecret string        `envconfig:"ACCSWAP_RAZORPAY_WEBHOOK_SECRET" required:"true"`
	BaseURL       string        `envconfig:"ACCSWAP_RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
	Timeout       time.Duration `envconfig:"ACCSWAP_RAZORPAY_TIMEOUT" default:"10s"`
	Currency      string        `envconfig:"ACCSWAP_RAZORPAY_CURRENCY" default:"INR"`
	MerchantName  string        `envconfig:"ACCSWAP_RAZORPAY_MERCHANT_NAME" default:"AccSwap Marketplace"`
}

type EscrowConfig struct {
	WebhookEventTTL time.Duration `envconfig:"ACCSWAP_ESCROW_WEBHOOK_EVENT_TTL" default:"168h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ACCSWAP_AUTO_MIGRATE" default:"false"`
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
