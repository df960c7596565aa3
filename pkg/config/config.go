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
	Password      PasswordConfig
	Chain         ChainConfig
	Cron          CronConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PAYROLLZ_APP_ENV" required:"true"`
	Port         string `envconfig:"PAYROLLZ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PAYROLLZ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PAYROLLZ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PAYROLLZ_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PAYROLLZ_DB_DSN" required:"true"`
	Driver string `envconfig:"PAYROLLZ_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"PAYROLLZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PAYROLLZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PAYROLLZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PAYROLLZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PAYROLLZ_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PAYROLLZ_REDIS_ADDR"`
	Password     string        `envconfig:"PAYROLLZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"PAYROLLZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PAYROLLZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PAYROLLZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PAYROLLZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PAYROLLZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PAYROLLZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PAYROLLZ_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PAYROLLZ_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PAYROLLZ_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"PAYROLLZ_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the session lifetime configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PAYROLLZ_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PAYROLLZ_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PAYROLLZ_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PAYROLLZ_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PAYROLLZ_ARGON_KEY_LEN" default:"32"`
}

// ChainConfig describes the JSON-RPC endpoint and the USDC token used for
// payroll transfers. The sender key is a static server secret; custody is out
// of scope here.
type ChainConfig struct {
	RPCURL           string        `envconfig:"PAYROLLZ_CHAIN_RPC_URL" required:"true"`
	ChainID          int64         `envconfig:"PAYROLLZ_CHAIN_ID" default:"84532"`
	TokenAddress     string        `envconfig:"PAYROLLZ_CHAIN_USDC_ADDRESS" required:"true"`
	SenderPrivateKey string        `envconfig:"PAYROLLZ_CHAIN_SENDER_PRIVATE_KEY" required:"true"`
	ReadTimeout      time.Duration `envconfig:"PAYROLLZ_CHAIN_READ_TIMEOUT" default:"8s"`
	TransferTimeout  time.Duration `envconfig:"PAYROLLZ_CHAIN_TRANSFER_TIMEOUT" default:"15s"`
	ReadRetries      int           `envconfig:"PAYROLLZ_CHAIN_READ_RETRIES" default:"2"`
	RetryBaseDelay   time.Duration `envconfig:"PAYROLLZ_CHAIN_RETRY_BASE_DELAY" default:"350ms"`
}

type CronConfig struct {
	Secret   string        `envconfig:"PAYROLLZ_CRON_SECRET"`
	Interval time.Duration `envconfig:"PAYROLLZ_CRON_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"PAYROLLZ_CRON_LOCK_TTL" default:"10m"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PAYROLLZ_AUTH_RL_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"PAYROLLZ_AUTH_RL_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit    int           `envconfig:"PAYROLLZ_AUTH_RL_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"PAYROLLZ_AUTH_RL_REGISTER_WINDOW" default:"15m"`
	RegisterIPLimit    int           `envconfig:"PAYROLLZ_AUTH_RL_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"PAYROLLZ_AUTH_RL_REGISTER_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PAYROLLZ_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PAYROLLZ_AUTO_MIGRATE" default:"false"`
}
