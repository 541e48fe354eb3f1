package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware used on
// the availability endpoint.  When Enabled is false or no Redis client is
// configured, caching is disabled.  Slots change whenever a reservation is
// written, so the TTL stays short.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
func LoadCacheConfig() CacheConfig {
	methods := map[string]bool{}
	for _, m := range envList("CACHE_METHODS", "GET") {
		methods[strings.ToUpper(m)] = true
	}
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      methods,
		TTL:          envDur("CACHE_TTL", 15*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "slots"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 65536),
	}
}
