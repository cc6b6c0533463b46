package config

// Redis backs distributed rate limiting and HTTP response caching.  If the
// server cannot be reached at startup NewRedisClient returns nil and callers
// degrade: caching is disabled and rate limiting falls back to an in-process
// limiter.

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig addresses the Redis server.  Host and Port take precedence
// over Addr when both are set.
type RedisConfig struct {
    Host     string `envconfig:"HOST"`
    Port     string `envconfig:"PORT"`
    Addr     string `envconfig:"ADDR" default:"localhost:6379"`
    Password string `envconfig:"PASSWORD"`
    DB       int    `envconfig:"DB"`
    TLS      bool   `envconfig:"TLS"`
}

// Address composes host:port.
func (c RedisConfig) Address() string {
    if c.Host != "" && c.Port != "" {
        return c.Host + ":" + c.Port
    }
    if c.Addr == "" {
        return "localhost:6379"
    }
    return c.Addr
}

// NewRedisClient connects and pings with a short timeout.  The returned
// client is nil if the server is unreachable.
func NewRedisClient(c RedisConfig) *redis.Client {
    var tlsConf *tls.Config
    if c.TLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      c.Address(),
        Password:  c.Password,
        DB:        c.DB,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
