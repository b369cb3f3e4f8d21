package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/camper-area-registration/internal/config"
	"github.com/iliyamo/camper-area-registration/internal/flow"
	"github.com/iliyamo/camper-area-registration/internal/handler"
	"github.com/iliyamo/camper-area-registration/internal/middleware"
	"github.com/iliyamo/camper-area-registration/internal/session"
)

// Wizard bundles what the wizard routes need.  Redis may be nil; the
// rate limiters and the response cache then pass requests through.
type Wizard struct {
	Handler     *handler.WizardHandler
	KV          session.KV
	Session     config.SessionConfig
	Secret      string
	Redis       *redis.Client
	RateLimit   config.RateLimitConfig
	SubmitLimit config.RateLimitConfig
	Cache       config.CacheConfig
}

// RegisterPages registers one GET route per wizard page.  Every page
// runs behind the session and the flow guard, which redirects requests
// the wizard does not allow from the visitor's current step.
func RegisterPages(e *echo.Echo, w Wizard) {
	mw := []echo.MiddlewareFunc{
		middleware.Session(w.Session, w.Secret),
		middleware.SessionStore(w.KV, w.Session.KeyPrefix),
		middleware.FlowGuard(),
	}
	for _, p := range flow.AllPages() {
		e.GET(p.Path(), w.Handler.Page, mw...)
	}
}

// RegisterAPI registers the JSON endpoints the pages call.  Read-only
// lookups that do not depend on the session are cached; everything that
// reads or writes the wizard state runs behind the session and the rate
// limiter.  Completion and the contact form also take a token from the
// stricter submit bucket.
func RegisterAPI(e *echo.Echo, w Wizard) {
	cache := middleware.NewRedisCache(w.Cache, w.Redis)
	e.GET("/api/sites/:siteID", w.Handler.PreviewSite, cache)
	e.GET("/api/messages", w.Handler.Messages, cache)

	g := e.Group(
		"/api",
		middleware.Session(w.Session, w.Secret),
		middleware.SessionStore(w.KV, w.Session.KeyPrefix),
		middleware.NewTokenBucket(w.RateLimit, w.Redis),
	)
	g.POST("/sites/:siteID/select", w.Handler.SelectSite)
	g.PATCH("/booking", w.Handler.UpdateBooking)
	g.DELETE("/session", w.Handler.ResetSession)

	submit := middleware.NewTokenBucket(w.SubmitLimit, w.Redis)
	g.POST("/booking/complete", w.Handler.CompleteRegistration, submit)
	g.POST("/contact", w.Handler.Contact, submit)
}
