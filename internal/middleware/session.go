package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/camper-area-registration/internal/config"
	"github.com/iliyamo/camper-area-registration/internal/session"
	"github.com/iliyamo/camper-area-registration/internal/utils"
)

// Context keys set by the session middleware.
const (
	ctxSessionID    = "session_id"
	ctxSessionStore = "session_store"
)

// Session identifies the visitor by a signed session cookie.  A missing,
// expired or forged cookie is replaced by a fresh session, so every
// request downstream has a session id available via SessionID(c).
func Session(cfg config.SessionConfig, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ck, err := c.Cookie(cfg.CookieName); err == nil {
				if id, err := utils.ParseSessionToken(secret, ck.Value); err == nil {
					c.Set(ctxSessionID, id)
					return next(c)
				}
			}
			tok, err := utils.NewSessionToken(secret, utils.NewSessionID(), cfg.TTL)
			if err != nil {
				c.Logger().Errorf("session: sign token: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
			}
			c.SetCookie(&http.Cookie{
				Name:     cfg.CookieName,
				Value:    tok.Token,
				Path:     "/",
				Expires:  tok.Exp,
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(ctxSessionID, tok.SessionID)
			return next(c)
		}
	}
}

// SessionID returns the id stored by Session, or "anon" outside it.
func SessionID(c echo.Context) string {
	if v, ok := c.Get(ctxSessionID).(string); ok && v != "" {
		return v
	}
	return "anon"
}

// SessionStore opens the visitor's wizard state and loads it before the
// handler runs.  Keys are namespaced as <prefix>:<session id>.
func SessionStore(kv session.KV, prefix string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st := session.New(kv, prefix+":"+SessionID(c))
			st.Load(c.Request().Context())
			c.Set(ctxSessionStore, st)
			return next(c)
		}
	}
}

// StoreFrom returns the store opened by SessionStore.
func StoreFrom(c echo.Context) *session.Store {
	st, _ := c.Get(ctxSessionStore).(*session.Store)
	return st
}
