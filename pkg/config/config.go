package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Catalog  CatalogConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Auth     AuthConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ARKI_APP_ENV" default:"dev"`
	Port         string `envconfig:"ARKI_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ARKI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ARKI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type CatalogConfig struct {
	DataDir string `envconfig:"ARKI_CATALOG_DATA_DIR" default:"data"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ARKI_REDIS_URL"`
	Address      string        `envconfig:"ARKI_REDIS_ADDR"`
	Password     string        `envconfig:"ARKI_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARKI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARKI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARKI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARKI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARKI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ARKI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. The
// storefront runs without redis in dev; carts then live in memory only.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"ARKI_JWT_SECRET" default:"dev-only-secret"`
	Issuer            string `envconfig:"ARKI_JWT_ISSUER" default:"arki-storefront"`
	ExpirationMinutes int    `envconfig:"ARKI_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// Expiration returns the session token TTL configured in minutes.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ARKI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ARKI_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ARKI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ARKI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ARKI_ARGON_KEY_LEN" default:"32"`
}

type AuthConfig struct {
	// AccountTTL bounds how long a signed-up account survives in the store
	// before it expires. Accounts are mock credentials, not real identities,
	// so they age out rather than accumulate.
	AccountTTL time.Duration `envconfig:"ARKI_AUTH_ACCOUNT_TTL" default:"8760h"`
}

type CartConfig struct {
	FreeShippingThreshold string        `envconfig:"ARKI_CART_FREE_SHIPPING_THRESHOLD" default:"150"`
	ShippingFee           string        `envconfig:"ARKI_CART_SHIPPING_FEE" default:"20"`
	SnapshotTTL           time.Duration `envconfig:"ARKI_CART_SNAPSHOT_TTL" default:"720h"`
}

type CheckoutConfig struct {
	SimulatedDelay time.Duration `envconfig:"ARKI_CHECKOUT_SIMULATED_DELAY" default:"1500ms"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ARKI_CORS_ALLOWED_ORIGINS" default:"*"`
}
