package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"

	"github.com/iliyamo/camper-area-registration/internal/flow"
	"github.com/iliyamo/camper-area-registration/internal/i18n"
	"github.com/iliyamo/camper-area-registration/internal/middleware"
	"github.com/iliyamo/camper-area-registration/internal/model"
	"github.com/iliyamo/camper-area-registration/internal/pricing"
)

// pageView is the data a page needs to render itself.
type pageView struct {
	Page      string               `json:"page"`
	Path      string               `json:"path"`
	Next      string               `json:"next,omitempty"`
	Locale    string               `json:"locale"`
	Language  string               `json:"languageName"`
	Text      map[string]string    `json:"text"`
	Site      *model.Site          `json:"site,omitempty"`
	AreaRules *model.AreaRule      `json:"areaRules,omitempty"`
	Booking   model.BookingDetails `json:"booking"`
	Quote     *pricing.Quote       `json:"quote,omitempty"`
}

// textSection names the translation section shown on a page.
func textSection(p flow.Page) string {
	switch p {
	case flow.Home:
		return ""
	case flow.Choice:
		return "choice"
	case flow.Welcome:
		return "welcome"
	case flow.Nights:
		return "nights"
	case flow.License:
		return "license"
	case flow.AboutYou:
		return "aboutYou"
	case flow.PaymentSummary:
		return "payment"
	case flow.RegistrationFinished:
		return "registration"
	case flow.AreaHome:
		return "areaHome"
	case flow.SendMail:
		return "sendMail"
	case flow.ErrorMaxNights:
		return "error.maxNights"
	}
	return ""
}

func euros(c int64) string { return fmt.Sprintf("%.2f", pricing.Euros(c)) }

// textParams fills the placeholders used across the page texts.
func textParams(site *model.Site, b model.BookingDetails, quote *pricing.Quote) map[string]any {
	p := map[string]any{"nights": b.NrOfNights}
	if site != nil {
		p["price"] = fmt.Sprintf("%.2f", site.PricePerNight)
		p["maxNights"] = site.MaxNrOfNights
		p["maxPeriod"] = site.MaxPeriodPeriod
	}
	if quote != nil {
		p["amount"] = euros(quote.Total)
	}
	return p
}

// pageTexts returns the page's strings with placeholders filled.  A few
// keys reuse {price} and {nights} for other figures and are filled
// individually.
func pageTexts(tag language.Tag, page flow.Page, site *model.Site, b model.BookingDetails, quote *pricing.Quote) map[string]string {
	section := textSection(page)
	if section == "" {
		return map[string]string{}
	}
	params := textParams(site, b, quote)
	text := i18n.Section(tag, section)
	for k, v := range text {
		text[k] = i18n.Format(v, params)
	}
	if site == nil {
		return text
	}
	price := func(v float64) map[string]any { return map[string]any{"price": fmt.Sprintf("%.2f", v)} }
	switch page {
	case flow.Choice:
		text["onlyWater"] = i18n.T(tag, "choice.onlyWater", price(site.PriceForWater))
	case flow.Nights:
		text["maxStay"] = i18n.T(tag, "nights.maxStay", map[string]any{"nights": site.MaxNrOfNights})
		text["useElectricity"] = i18n.T(tag, "nights.useElectricity", price(site.PriceForElectricity))
	case flow.Welcome:
		text["rules.maxStay"] = i18n.T(tag, "welcome.rules.maxStay", map[string]any{
			"nights": site.MaxNrOfNights, "price": fmt.Sprintf("%.2f", site.PricePerNight),
		})
	}
	return text
}

// Page renders the view model of the page FlowGuard allowed.
func (h *WizardHandler) Page(c echo.Context) error {
	page := middleware.PageFrom(c)
	st := middleware.StoreFrom(c)
	if st == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
	}
	tag, persist := i18n.ResolveTag(c.Request())
	if persist {
		i18n.SetLanguageCookie(c.Response(), tag)
	}

	site := st.Site()
	booking := st.Booking()
	var quote *pricing.Quote
	if site != nil && page == flow.PaymentSummary {
		qt := pricing.Compute(site, booking, h.Now())
		quote = &qt
	}

	view := pageView{
		Page:      page.String(),
		Path:      page.Path(),
		Locale:    i18n.Code(tag),
		Language:  i18n.T(tag, "languageName", nil),
		Text:      pageTexts(tag, page, site, booking, quote),
		Site:      site,
		AreaRules: st.AreaRules(),
		Booking:   booking,
		Quote:     quote,
	}
	if next, ok := flow.Next(page, site); ok && site != nil {
		view.Next = next.Path()
	}
	return c.JSON(http.StatusOK, view)
}
