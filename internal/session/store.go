package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/iliyamo/camper-area-registration/internal/model"
)

// Names of the three persisted entries.
const (
	KeyCurrentSite    = "currentSite"
	KeyAreaRules      = "areaRules"
	KeyBookingDetails = "bookingDetails"
)

// ErrInvalidBooking is returned by UpdateBooking when the result would
// have fewer than one night or one visitor.
var ErrInvalidBooking = errors.New("session: nights and visitors must be at least 1")

// Store is one visitor's wizard state.  Every setter serializes the new
// value and writes it to the KV before changing the in-memory copy, so
// the persisted entry always matches what the getters return.  A Store
// belongs to a single request and is not safe for concurrent use.
type Store struct {
	kv        KV
	namespace string

	site    *model.Site
	rules   *model.AreaRule
	booking model.BookingDetails
}

// New returns an empty Store whose keys are prefixed with namespace.
// Call Load to pick up persisted state.
func New(kv KV, namespace string) *Store {
	return &Store{kv: kv, namespace: namespace, booking: model.DefaultBookingDetails()}
}

func (s *Store) key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + ":" + name
}

// Load seeds the in-memory state from the KV.  It never fails: a missing
// entry yields the default value and an unreadable or corrupt entry is
// logged, removed and replaced by the default.
func (s *Store) Load(ctx context.Context) {
	s.site = nil
	s.rules = nil
	s.booking = model.DefaultBookingDetails()

	var site *model.Site
	if s.read(ctx, KeyCurrentSite, &site) {
		s.site = site
	}
	var rules *model.AreaRule
	if s.read(ctx, KeyAreaRules, &rules) {
		s.rules = rules
	}
	var booking model.BookingDetails
	if s.read(ctx, KeyBookingDetails, &booking) {
		if booking.NrOfNights < 1 || booking.NrOfVisitors < 1 {
			log.Printf("session: discarding %s: %v", s.key(KeyBookingDetails), ErrInvalidBooking)
			s.discard(ctx, KeyBookingDetails)
		} else {
			s.booking = booking
		}
	}
}

// read decodes the entry under name into dst and reports whether a
// usable value was found.
func (s *Store) read(ctx context.Context, name string, dst any) bool {
	raw, err := s.kv.Get(ctx, s.key(name))
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		log.Printf("session: reading %s: %v", s.key(name), err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Printf("session: discarding corrupt %s: %v", s.key(name), err)
		s.discard(ctx, name)
		return false
	}
	return true
}

func (s *Store) discard(ctx context.Context, name string) {
	if err := s.kv.Delete(ctx, s.key(name)); err != nil {
		log.Printf("session: deleting %s: %v", s.key(name), err)
	}
}

// write persists one entry and renews the lifetime of the other two.
func (s *Store) write(ctx context.Context, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	var siblings []string
	for _, other := range []string{KeyCurrentSite, KeyAreaRules, KeyBookingDetails} {
		if other != name {
			siblings = append(siblings, s.key(other))
		}
	}
	if err := s.kv.Set(ctx, s.key(name), raw, siblings...); err != nil {
		return fmt.Errorf("persist %s: %w", name, err)
	}
	return nil
}

// Site returns a copy of the loaded site, or nil.
func (s *Store) Site() *model.Site {
	if s.site == nil {
		return nil
	}
	cp := *s.site
	return &cp
}

// AreaRules returns a copy of the loaded area rules, or nil.
func (s *Store) AreaRules() *model.AreaRule {
	if s.rules == nil {
		return nil
	}
	cp := *s.rules
	return &cp
}

// Booking returns the booking in progress.
func (s *Store) Booking() model.BookingDetails { return s.booking }

// SetSite replaces the current site.  A nil site is persisted as null.
func (s *Store) SetSite(ctx context.Context, site *model.Site) error {
	var next *model.Site
	if site != nil {
		cp := *site
		next = &cp
	}
	if err := s.write(ctx, KeyCurrentSite, next); err != nil {
		return err
	}
	s.site = next
	return nil
}

// SetAreaRules replaces the current area rules.
func (s *Store) SetAreaRules(ctx context.Context, rules *model.AreaRule) error {
	var next *model.AreaRule
	if rules != nil {
		cp := *rules
		next = &cp
	}
	if err := s.write(ctx, KeyAreaRules, next); err != nil {
		return err
	}
	s.rules = next
	return nil
}

// UpdateBooking applies u to the booking in progress and persists the
// full result.
func (s *Store) UpdateBooking(ctx context.Context, u model.BookingUpdate) (model.BookingDetails, error) {
	next := u.Apply(s.booking)
	if next.NrOfNights < 1 || next.NrOfVisitors < 1 {
		return s.booking, ErrInvalidBooking
	}
	if err := s.write(ctx, KeyBookingDetails, next); err != nil {
		return s.booking, err
	}
	s.booking = next
	return next, nil
}

// ResetBooking restores the default booking, keeping site and rules.
func (s *Store) ResetBooking(ctx context.Context) error {
	def := model.DefaultBookingDetails()
	if err := s.write(ctx, KeyBookingDetails, def); err != nil {
		return err
	}
	s.booking = def
	return nil
}

// Clear resets all three entries to their defaults and removes them
// from the KV.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key(KeyCurrentSite), s.key(KeyAreaRules), s.key(KeyBookingDetails)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.site = nil
	s.rules = nil
	s.booking = model.DefaultBookingDetails()
	return nil
}
