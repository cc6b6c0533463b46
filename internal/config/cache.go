package config

import (
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled.  KeyStrategy determines which parts of the request contribute
// to the cache key.
type CacheConfig struct {
    Enabled      bool          `envconfig:"ENABLED" default:"true"`
    Methods      []string      `envconfig:"METHODS" default:"GET"`
    TTL          time.Duration `envconfig:"TTL" default:"30s"`
    KeyStrategy  string        `envconfig:"KEY_STRATEGY" default:"route_query"`
    Prefix       string        `envconfig:"PREFIX" default:"cache"`
    MaxBodyBytes int           `envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

// Cacheable reports whether responses to method may be cached.
func (c CacheConfig) Cacheable(method string) bool {
    for _, m := range c.Methods {
        if strings.EqualFold(strings.TrimSpace(m), method) {
            return true
        }
    }
    return false
}
