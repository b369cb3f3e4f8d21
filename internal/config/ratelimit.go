package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig describes one Redis token bucket.  The wizard uses two:
// a general bucket for every API call and a smaller one in front of the
// endpoints that write a registration or send mail.
type RateLimitConfig struct {
	Name           string        // bucket name, part of every key
	Enabled        bool
	Capacity       int           // tokens when full
	RefillTokens   int           // tokens added per RefillInterval
	RefillInterval time.Duration
	TTL            time.Duration // idle buckets expire after this
	KeyStrategy    string        // see middleware.buildRateKey
	Prefix         string
	Debug          bool          // log decisions and expose X-RateLimit-Key
}

// LoadRateLimitConfig reads the general API bucket (RATE_LIMIT_*).
func LoadRateLimitConfig() RateLimitConfig {
	return loadBucket("RATE_LIMIT", RateLimitConfig{
		Name:           "api",
		Enabled:        true,
		Capacity:       60,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_session_route",
		Prefix:         "rl",
	})
}

// LoadSubmitLimitConfig reads the bucket guarding registration completion
// and the contact form (SUBMIT_LIMIT_*).  It is keyed per session and
// route so one visitor cannot flood the broker.
func LoadSubmitLimitConfig() RateLimitConfig {
	return loadBucket("SUBMIT_LIMIT", RateLimitConfig{
		Name:           "submit",
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            time.Hour,
		KeyStrategy:    "session_route",
		Prefix:         "rl",
	})
}

// loadBucket overrides def from <prefix>_* variables and clamps the
// result to a usable bucket.
func loadBucket(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := RateLimitConfig{
		Name:           def.Name,
		Enabled:        envBool(prefix+"_ENABLED", def.Enabled),
		Capacity:       envInt(prefix+"_CAPACITY", def.Capacity),
		RefillTokens:   envInt(prefix+"_REFILL_TOKENS", def.RefillTokens),
		RefillInterval: envDur(prefix+"_REFILL_INTERVAL", def.RefillInterval),
		TTL:            envDur(prefix+"_TTL", def.TTL),
		KeyStrategy:    envStr(prefix+"_KEY_STRATEGY", def.KeyStrategy),
		Prefix:         envStr(prefix+"_PREFIX", def.Prefix),
		Debug:          envBool(prefix+"_DEBUG", def.Debug),
	}
	// <prefix>_REFILL_EVERY is shorthand for one token per interval.
	if every := envDur(prefix+"_REFILL_EVERY", 0); every > 0 {
		cfg.RefillTokens = 1
		cfg.RefillInterval = every
	}
	cfg.Capacity = max(cfg.Capacity, 1)
	cfg.RefillTokens = max(cfg.RefillTokens, 1)
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	// A bucket must outlive a few refills or it would reset to full.
	cfg.TTL = max(cfg.TTL, 5*cfg.RefillInterval)
	return cfg
}

func envStr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

// envBool accepts strconv.ParseBool values plus yes/no and on/off.
// Anything else keeps the default.
func envBool(k string, d bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(k)))
	switch v {
	case "":
		return d
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func envInt(k string, d int) int {
	n, err := strconv.Atoi(envStr(k, ""))
	if err != nil {
		return d
	}
	return n
}

func envDur(k string, d time.Duration) time.Duration {
	dur, err := time.ParseDuration(envStr(k, ""))
	if err != nil {
		return d
	}
	return dur
}
