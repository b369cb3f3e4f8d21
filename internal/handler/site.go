package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/camper-area-registration/internal/flow"
	"github.com/iliyamo/camper-area-registration/internal/i18n"
	"github.com/iliyamo/camper-area-registration/internal/middleware"
	"github.com/iliyamo/camper-area-registration/internal/model"
	"github.com/iliyamo/camper-area-registration/internal/repository"
)

// lookupSite loads a site and its rules in the request's language.  A
// site without rules is not an error; the rules are simply nil.
func (h *WizardHandler) lookupSite(ctx context.Context, siteID, lang string) (*model.Site, *model.AreaRule, error) {
	site, err := h.Sites.GetBySiteID(ctx, siteID)
	if err != nil {
		return nil, nil, err
	}
	rules, err := h.Rules.Get(ctx, site.SiteID, lang)
	if err != nil && !errors.Is(err, repository.ErrAreaRuleNotFound) {
		return nil, nil, err
	}
	return site, rules, nil
}

func siteLookupStatus(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrSiteNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "site not found"})
	case errors.Is(err, repository.ErrSiteInactive):
		return c.JSON(http.StatusGone, echo.Map{"error": "site is not accepting registrations"})
	default:
		c.Logger().Errorf("site lookup: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// PreviewSite handles GET /api/sites/:siteID.  It returns the site and
// its rules without touching the visitor's session; the AreaHome page of
// a scanned code uses it.
func (h *WizardHandler) PreviewSite(c echo.Context) error {
	tag, _ := i18n.ResolveTag(c.Request())
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	site, rules, err := h.lookupSite(ctx, c.Param("siteID"), i18n.Code(tag))
	if err != nil {
		return siteLookupStatus(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"site": site, "areaRules": rules})
}

// SelectSite handles POST /api/sites/:siteID/select.  It loads the site
// into the visitor's session, restarts the booking and answers with the
// first step of the wizard for the site's flags.
func (h *WizardHandler) SelectSite(c echo.Context) error {
	st := middleware.StoreFrom(c)
	if st == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
	}
	tag, _ := i18n.ResolveTag(c.Request())
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	site, rules, err := h.lookupSite(ctx, c.Param("siteID"), i18n.Code(tag))
	if err != nil {
		return siteLookupStatus(c, err)
	}
	if err := st.SetSite(ctx, site); err != nil {
		c.Logger().Errorf("select site: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session write failed"})
	}
	if err := st.SetAreaRules(ctx, rules); err != nil {
		c.Logger().Errorf("select site: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session write failed"})
	}
	if err := st.ResetBooking(ctx); err != nil {
		c.Logger().Errorf("select site: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session write failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"site":      site,
		"areaRules": rules,
		"booking":   st.Booking(),
		"next":      flow.EntryPage(site).Path(),
	})
}

// ResetSession handles DELETE /api/session.  It forgets the site, the
// rules and the booking; the visitor starts again at Home.
func (h *WizardHandler) ResetSession(c echo.Context) error {
	st := middleware.StoreFrom(c)
	if st == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
	}
	if err := st.Clear(c.Request().Context()); err != nil {
		c.Logger().Errorf("reset session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session write failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"next": flow.Home.Path()})
}
