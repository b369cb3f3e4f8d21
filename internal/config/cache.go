package config

import (
	"strings"
	"time"
)

// CacheConfig controls the Redis response cache in front of the
// session-free lookups (site preview, translation table).
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool // upper-case HTTP methods that may be cached
	TTL          time.Duration
	KeyStrategy  string          // route | route_query | method_route_query | route_query_lang
	Prefix       string
	MaxBodyBytes int             // larger responses are not stored; 0 means no limit
}

var cacheKeyStrategies = []string{"route", "route_query", "method_route_query", "route_query_lang"}

// LoadCacheConfig reads CACHE_* variables.  An unknown key strategy falls
// back to route_query_lang, which keys translated responses per language.
func LoadCacheConfig() CacheConfig {
	strategy := strings.ToLower(envStr("CACHE_KEY_STRATEGY", "route_query_lang"))
	known := false
	for _, s := range cacheKeyStrategies {
		known = known || s == strategy
	}
	if !known {
		strategy = "route_query_lang"
	}
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  strategy,
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: max(envInt("CACHE_MAX_BODY_BYTES", 1<<20), 0),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		m[strings.ToUpper(f)] = true
	}
	return m
}
