package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/camper-area-registration/internal/flow"
	"github.com/iliyamo/camper-area-registration/internal/i18n"
	"github.com/iliyamo/camper-area-registration/internal/middleware"
	"github.com/iliyamo/camper-area-registration/internal/model"
	"github.com/iliyamo/camper-area-registration/internal/pricing"
	q "github.com/iliyamo/camper-area-registration/internal/queue"
	"github.com/iliyamo/camper-area-registration/internal/session"
)

// exceedsStayLimit reports whether booking breaks the site's night
// limits: more than MaxNrOfNights in one stay, or, for sites with a
// MaxPeriod, more than MaxNrOfNights within the last MaxPeriodPeriod days
// for the same vehicle.
func (h *WizardHandler) exceedsStayLimit(ctx context.Context, site *model.Site, b model.BookingDetails) (bool, error) {
	if site.MaxNrOfNights <= 0 {
		return false, nil
	}
	if site.ApplyMaxNrOfNights && b.NrOfNights > site.MaxNrOfNights {
		return true, nil
	}
	if !site.MaxPeriod || site.MaxPeriodPeriod <= 0 || strings.TrimSpace(b.LicensePlate) == "" {
		return false, nil
	}
	since := h.Now().AddDate(0, 0, -site.MaxPeriodPeriod)
	used, err := h.Registrations.NightsInPeriod(ctx, site.SiteID, b.LicensePlate, since)
	if err != nil {
		return false, err
	}
	return used+b.NrOfNights > site.MaxNrOfNights, nil
}

func maxNightsResponse(c echo.Context) error {
	return c.JSON(http.StatusUnprocessableEntity, echo.Map{
		"error": "maximum number of nights exceeded",
		"next":  flow.ErrorMaxNights.Path(),
	})
}

// UpdateBooking handles PATCH /api/booking.  The body is a partial
// BookingDetails; absent fields keep their value.  Night limits are
// checked here, at the step that sets the nights or the vehicle, and a
// violation sends the visitor to the max-nights error page without
// storing anything.
func (h *WizardHandler) UpdateBooking(c echo.Context) error {
	st := middleware.StoreFrom(c)
	if st == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
	}
	site := st.Site()
	if site == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no site selected", "next": flow.Home.Path()})
	}

	var u model.BookingUpdate
	if err := c.Bind(&u); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if u.LicensePlate != nil {
		plate := strings.ToUpper(strings.TrimSpace(*u.LicensePlate))
		u.LicensePlate = &plate
	}
	if u.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &email
	}
	if err := h.Validate.Struct(u); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking", "fields": fieldErrors(err)})
	}
	if u.UseElectricity != nil && *u.UseElectricity && !site.ElectricityOption {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "electricity is not offered at this site"})
	}
	if u.StayType != nil && *u.StayType == model.StayWater && !site.OnlyWaterOption {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "water-only stays are not offered at this site"})
	}
	if u.StayType != nil && *u.StayType == model.StayReservation && !site.ReservationsAllowed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservations are not offered at this site"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if u.NrOfNights != nil || u.LicensePlate != nil {
		exceeded, err := h.exceedsStayLimit(ctx, site, u.Apply(st.Booking()))
		if err != nil {
			c.Logger().Errorf("stay limit: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if exceeded {
			return maxNightsResponse(c)
		}
	}

	b, err := st.UpdateBooking(ctx, u)
	if err != nil {
		if errors.Is(err, session.ErrInvalidBooking) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "nights and visitors must be at least 1"})
		}
		c.Logger().Errorf("update booking: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session write failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// missingForCompletion lists the wizard inputs a registration needs but
// the booking does not have yet.
func missingForCompletion(b model.BookingDetails) []string {
	var missing []string
	if strings.TrimSpace(b.LicensePlate) == "" {
		missing = append(missing, "licensePlate")
	}
	if strings.TrimSpace(b.Email) == "" {
		missing = append(missing, "email")
	}
	if !b.AgreeTerms {
		missing = append(missing, "agreeTerms")
	}
	return missing
}

// CompleteRegistration handles POST /api/booking/complete.  It stores the
// registration, resets the booking, publishes a registration.completed
// event and points the visitor at the RegistrationFinished page.  The
// site stays in the session so that page remains reachable; DELETE
// /api/session ends it.
func (h *WizardHandler) CompleteRegistration(c echo.Context) error {
	st := middleware.StoreFrom(c)
	if st == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
	}
	site := st.Site()
	if site == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no site selected", "next": flow.Home.Path()})
	}
	b := st.Booking()
	if missing := missingForCompletion(b); len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking incomplete", "missing": missing})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	exceeded, err := h.exceedsStayLimit(ctx, site, b)
	if err != nil {
		c.Logger().Errorf("stay limit: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if exceeded {
		return maxNightsResponse(c)
	}

	now := h.Now()
	quote := pricing.Compute(site, b, now)
	stayType := b.StayType
	if stayType == "" {
		stayType = model.StayNight
	}
	reg := &model.Registration{
		Reference:    uuid.NewString(),
		SiteID:       site.SiteID,
		LicensePlate: b.LicensePlate,
		Email:        b.Email,
		Phone:        b.Phone,
		KeepUpdated:  b.KeepUpdated,
		StayType:     stayType,
		NrOfNights:   b.NrOfNights,
		NrOfVisitors: b.NrOfVisitors,
		Electricity:  b.UseElectricity,
		TotalCents:   quote.Total,
		CreatedAt:    now,
	}
	if err := h.Registrations.Create(ctx, reg); err != nil {
		c.Logger().Errorf("create registration: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create registration failed"})
	}
	// A fresh booking lacks plate, email and terms, so resubmitting it is
	// refused as incomplete.
	if err := st.ResetBooking(ctx); err != nil {
		c.Logger().Errorf("reset booking after %s: %v", reg.Reference, err)
	}

	tag, _ := i18n.ResolveTag(c.Request())
	ev := q.RegistrationCompletedEvent{
		RegistrationID: reg.ID,
		Reference:      reg.Reference,
		SiteID:         site.SiteID,
		SiteName:       site.Name,
		LicensePlate:   reg.LicensePlate,
		Email:          reg.Email,
		Phone:          reg.Phone,
		Language:       i18n.Code(tag),
		StayType:       reg.StayType,
		NrOfNights:     reg.NrOfNights,
		NrOfVisitors:   reg.NrOfVisitors,
		Electricity:    reg.Electricity,
		TotalCents:     reg.TotalCents,
		EmailCopy:      site.EmailCopy,
		SiteEmail:      site.Email,
		CompletedAt:    now.Format(time.RFC3339),
	}
	// The registration is stored; a broker outage must not undo it.
	if err := h.Events.PublishRegistrationCompleted(ctx, ev); err != nil {
		c.Logger().Warnf("publish registration %s: %v", reg.Reference, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"reference":       reg.Reference,
		"registration_id": reg.ID,
		"quote":           quote,
		"next":            flow.RegistrationFinished.Path(),
	})
}
