package config // package config loads application configuration from environment variables

import (
    "fmt"
    "time"

    "github.com/joho/godotenv"
    "github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; nested sections are prefixed with their own name
// (CACHE_*, RATE_LIMIT_*, REDIS_*).
type Config struct {
    Env      string `envconfig:"APP_ENV" default:"dev"`     // application environment (dev/test/prod)
    Port     string `envconfig:"APP_PORT" default:"8080"`   // HTTP port to listen on
    LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

    DBUser string `envconfig:"DB_USER" required:"true"`
    DBPass string `envconfig:"DB_PASS"` // empty allowed
    DBHost string `envconfig:"DB_HOST" default:"127.0.0.1"`
    DBPort string `envconfig:"DB_PORT" default:"3306"`
    DBName string `envconfig:"DB_NAME" required:"true"`

    AuthEnabled  bool   `envconfig:"AUTH_ENABLED" default:"true"`
    JWTSecret    string `envconfig:"JWT_SECRET"`
    AccessTTLMin int    `envconfig:"ACCESS_TOKEN_TTL_MIN" default:"60"`
    BcryptCost   int    `envconfig:"BCRYPT_COST" default:"10"`

    RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`

    // An empty AMQP_URL disables event publishing.
    AMQPURL        string `envconfig:"AMQP_URL"`
    AMQPExchange   string `envconfig:"AMQP_EXCHANGE" default:"reservations"`
    AMQPQueue      string `envconfig:"AMQP_QUEUE" default:"reservation.log"`
    BookingLogPath string `envconfig:"BOOKING_LOG_PATH" default:"logs/booking.log"`

    Cache     CacheConfig     `envconfig:"CACHE"`
    RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
    Redis     RedisConfig     `envconfig:"REDIS"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
    _ = godotenv.Load()
    return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
    var c Config
    if err := envconfig.Process("", &c); err != nil {
        return Config{}, fmt.Errorf("load config: %w", err)
    }
    if err := c.validate(); err != nil {
        return Config{}, err
    }
    c.RateLimit.normalize()
    return c, nil
}

func (c Config) validate() error {
    if c.AuthEnabled && c.JWTSecret == "" {
        return fmt.Errorf("load config: JWT_SECRET is required when AUTH_ENABLED is true")
    }
    if c.RequestTimeout <= 0 {
        return fmt.Errorf("load config: REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
    }
    return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// IsProduction reports whether APP_ENV selects production behaviour.
func (c Config) IsProduction() bool { return c.Env == "prod" || c.Env == "production" }
