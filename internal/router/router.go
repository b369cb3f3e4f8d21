package router // package router defines how HTTP routes are registered for the service

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/camper-area-registration/internal/flow"
	"github.com/iliyamo/camper-area-registration/internal/handler"
)

// RegisterRoutes registers the unauthenticated operational endpoints:
// liveness at /healthz and dependency readiness at /readyz.
func RegisterRoutes(e *echo.Echo, ready map[string]handler.PingFunc) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(ready))
}

// RegisterFallback sends every unmatched page path back to Home and
// answers unmatched API paths with a JSON 404.  It must run after all
// groups are registered: echo adds a catch-all for each group that has
// middleware, and the last registration for a path wins.
func RegisterFallback(e *echo.Echo) {
	e.RouteNotFound("/api/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	})
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, flow.Home.Path())
	})
}
