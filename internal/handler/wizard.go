package handler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/camper-area-registration/internal/model"
	q "github.com/iliyamo/camper-area-registration/internal/queue"
)

// SiteFinder looks up a site by its public code.
type SiteFinder interface {
	GetBySiteID(ctx context.Context, siteID string) (*model.Site, error)
}

// AreaRuleFinder looks up the rules of a site in a language.
type AreaRuleFinder interface {
	Get(ctx context.Context, siteID, language string) (*model.AreaRule, error)
}

// RegistrationStore persists completed registrations and answers the
// stay-limit queries.
type RegistrationStore interface {
	Create(ctx context.Context, reg *model.Registration) error
	NightsInPeriod(ctx context.Context, siteID, plate string, since time.Time) (int, error)
}

// EventPublisher publishes domain events to the broker.
type EventPublisher interface {
	PublishRegistrationCompleted(ctx context.Context, ev q.RegistrationCompletedEvent) error
	PublishContactMessage(ctx context.Context, ev q.ContactMessageEvent) error
}

// WizardHandler serves the registration pages and the API the pages call
// to move through the wizard.  Every method except PreviewSite and
// Messages expects the session middleware to have opened the visitor's
// store.
type WizardHandler struct {
	Sites         SiteFinder
	Rules         AreaRuleFinder
	Registrations RegistrationStore
	Events        EventPublisher
	Validate      *validator.Validate
	Now           func() time.Time
}

// NewWizardHandler constructs a WizardHandler and panics if any
// dependency is nil.
func NewWizardHandler(sites SiteFinder, rules AreaRuleFinder, regs RegistrationStore, events EventPublisher) *WizardHandler {
	if sites == nil || rules == nil || regs == nil || events == nil {
		panic("nil dependency passed to NewWizardHandler")
	}
	return &WizardHandler{
		Sites:         sites,
		Rules:         rules,
		Registrations: regs,
		Events:        events,
		Validate:      newValidator(),
		Now:           func() time.Time { return time.Now().UTC() },
	}
}

// dbTimeout bounds every repository call made while serving a request.
const dbTimeout = 5 * time.Second
