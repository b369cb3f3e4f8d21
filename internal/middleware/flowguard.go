package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/camper-area-registration/internal/flow"
)

const (
	ctxPage = "flow_page"
	// OriginParam names the page the visitor navigates from.
	OriginParam = "from"
	// RedirectHeader reports the page a guarded request was sent to.
	RedirectHeader = "X-Flow-Redirect"
)

// FlowGuard runs flow.Decide before every page route.  It must be
// installed after SessionStore.  Allowed requests reach the handler with
// the page available via PageFrom(c); everything else is answered with a
// 302 to the page the guard picked.
func FlowGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			target := flow.PageFromPath(c.Path())
			origin, hasOrigin := originPage(c)
			if !hasOrigin {
				origin = flow.Home
			}
			st := StoreFrom(c)
			if st == nil {
				c.Logger().Errorf("flow: no session store for %s", c.Path())
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
			}

			d := flow.Decide(target, origin, st.Site())
			if d.Outcome == flow.Redirect {
				c.Response().Header().Set(RedirectHeader, d.Target.String())
				return c.Redirect(http.StatusFound, d.Target.Path())
			}
			c.Set(ctxPage, d.Target)
			return next(c)
		}
	}
}

// PageFrom returns the page FlowGuard allowed.
func PageFrom(c echo.Context) flow.Page {
	p, _ := c.Get(ctxPage).(flow.Page)
	return p
}

// originPage finds the page the visitor comes from: the ?from= parameter
// (page name or path) first, then the path of a same-host Referer.
func originPage(c echo.Context) (flow.Page, bool) {
	if v := strings.TrimSpace(c.QueryParam(OriginParam)); v != "" {
		if p, ok := flow.ParseName(v); ok {
			return p, true
		}
		if p, ok := flow.LookupPath(v); ok {
			return p, true
		}
	}
	ref := c.Request().Referer()
	if ref == "" {
		return flow.Home, false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return flow.Home, false
	}
	if u.Host != "" && !strings.EqualFold(u.Host, c.Request().Host) {
		return flow.Home, false
	}
	return flow.LookupPath(u.Path)
}
