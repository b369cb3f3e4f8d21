package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// PingFunc checks one dependency, e.g. (*sql.DB).PingContext.
type PingFunc func(ctx context.Context) error

// Health is a liveness check for load balancers.  It answers "ok" with
// 200 as long as the process serves requests.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready reports 503 when any named dependency fails its ping.  A nil
// PingFunc marks a dependency that is not configured and is skipped.
func Ready(deps map[string]PingFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		status := http.StatusOK
		out := make(map[string]string, len(deps))
		for name, ping := range deps {
			if ping == nil {
				out[name] = "disabled"
				continue
			}
			if err := ping(ctx); err != nil {
				c.Logger().Warnf("ready: %s: %v", name, err)
				out[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			out[name] = "up"
		}
		return c.JSON(status, out)
	}
}
