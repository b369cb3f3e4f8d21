package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/camper-area-registration/internal/config"
	"github.com/iliyamo/camper-area-registration/internal/i18n"
)

// cachedResponse is what a cache entry holds.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// recorder tees the response body into a buffer of at most limit bytes
// while it is written to the client.
type recorder struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.overflow {
		if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
			r.overflow = true
			r.buf.Reset()
		} else {
			r.buf.Write(b)
		}
	}
	return r.ResponseWriter.Write(b)
}

// cacheKeyFrom builds the entry key <prefix>:<sha1>.  The default
// "route_query_lang" strategy adds the resolved language, since the
// cached responses are translated.  The request path is always part of
// the key so /api/sites/a and /api/sites/b never collide.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	parts := []string{"route", c.Path(), "path", r.URL.Path}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
	case "route_query":
		parts = append(parts, "q", r.URL.RawQuery)
	case "method_route_query":
		parts = append(parts, "method", r.Method, "q", r.URL.RawQuery)
	default:
		tag, _ := i18n.ResolveTag(r)
		parts = append(parts, "q", r.URL.RawQuery, "lang", i18n.Code(tag))
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum)
}

// uncacheable headers are never stored nor replayed.  Set-Cookie would
// hand one visitor's session to the next.
var uncacheable = map[string]bool{"Content-Length": true, "Set-Cookie": true, "X-Cache": true}

func storableHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vals := range h {
		if uncacheable[http.CanonicalHeaderKey(k)] {
			continue
		}
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// NewRedisCache serves repeated requests of the configured methods from
// Redis.  Only 200 responses that fit in MaxBodyBytes are stored.  It is
// a no-op when disabled or without Redis.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			key := cacheKeyFrom(cfg, c)
			res := c.Response()

			if raw, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				var hit cachedResponse
				if err := json.Unmarshal(raw, &hit); err == nil {
					for k, vals := range hit.Header {
						for _, v := range vals {
							res.Header().Add(k, v)
						}
					}
					// Cookies are never stored, so an explicit language
					// choice is persisted here as the handler would have.
					if tag, persist := i18n.ResolveTag(c.Request()); persist {
						i18n.SetLanguageCookie(res, tag)
					}
					res.Header().Set("X-Cache", "HIT")
					res.WriteHeader(hit.Status)
					_, err := res.Write(hit.Body)
					return err
				}
				c.Logger().Warnf("cache: dropping unreadable entry %s", key)
			}

			rec := &recorder{ResponseWriter: res.Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			res.Writer = rec
			res.Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflow {
				return nil
			}

			entry, err := json.Marshal(cachedResponse{
				Status: rec.status,
				Header: storableHeader(res.Header()),
				Body:   rec.buf.Bytes(),
			})
			if err == nil {
				// The request context may already be cancelled.
				err = rdb.Set(context.WithoutCancel(c.Request().Context()), key, entry, ttl).Err()
			}
			if err != nil {
				c.Logger().Warnf("cache: store %s: %v", key, err)
			}
			return nil
		}
	}
}
