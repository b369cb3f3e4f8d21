package config

import "time"

// SessionConfig controls the visitor session cookie and the storage of
// wizard state.
type SessionConfig struct {
	CookieName string        // cookie carrying the signed session token
	Secure     bool          // mark the cookie Secure (HTTPS only)
	TTL        time.Duration // lifetime of the token and the stored state
	KeyPrefix  string        // prefix of the Redis keys holding wizard state
}

// LoadSessionConfig reads the optional session settings.  ttl is the
// default lifetime, normally Config.SessionTTL.
func LoadSessionConfig(ttl time.Duration) SessionConfig {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return SessionConfig{
		CookieName: envStr("SESSION_COOKIE", "camper_session"),
		Secure:     envBool("SESSION_COOKIE_SECURE", false),
		TTL:        envDur("SESSION_TTL", ttl),
		KeyPrefix:  envStr("SESSION_KEY_PREFIX", "session"),
	}
}
