package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/camper-area-registration/internal/i18n"
	"github.com/iliyamo/camper-area-registration/internal/middleware"
	q "github.com/iliyamo/camper-area-registration/internal/queue"
)

// Messages handles GET /api/messages: the whole translation table for
// the visitor's language.
func (h *WizardHandler) Messages(c echo.Context) error {
	tag, persist := i18n.ResolveTag(c.Request())
	if persist {
		i18n.SetLanguageCookie(c.Response(), tag)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"locale":    i18n.Code(tag),
		"supported": supportedCodes(),
		"messages":  i18n.Messages(tag),
	})
}

func supportedCodes() []string {
	tags := i18n.Supported()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, i18n.Code(t))
	}
	return out
}

type contactReq struct {
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Contact handles POST /api/contact from the SendMail page.  The message
// is addressed to the operator of the site in the visitor's session and
// handed to the mailer through the contact.message queue.
func (h *WizardHandler) Contact(c echo.Context) error {
	st := middleware.StoreFrom(c)
	if st == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
	}
	site := st.Site()
	if site == nil || strings.TrimSpace(site.Email) == "" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no site to send the message to"})
	}

	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if err := h.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message", "fields": fieldErrors(err)})
	}

	tag, _ := i18n.ResolveTag(c.Request())
	ev := q.ContactMessageEvent{
		SiteID:    site.SiteID,
		To:        site.Email,
		From:      req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		Language:  i18n.Code(tag),
		CreatedAt: h.Now().Format(time.RFC3339),
	}
	if err := h.Events.PublishContactMessage(c.Request().Context(), ev); err != nil {
		c.Logger().Errorf("publish contact message: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "message could not be sent"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
}
