package model

// Stay types offered on the Choice step.
const (
	StayNight       = "night"
	StayWater       = "water"
	StayReservation = "reservation"
)

// BookingDetails is the visitor's in-progress selection.  It is mutated
// step by step while the wizard advances and reset to the defaults when
// the wizard restarts or completes.  Only NrOfNights, NrOfVisitors and
// UseElectricity are always present; the remaining fields are filled by
// later steps and stay empty until then.
type BookingDetails struct {
	NrOfNights     int    `json:"nrOfNights"`
	NrOfVisitors   int    `json:"nrOfVisitors"`
	UseElectricity bool   `json:"useElectricity"`
	StayType       string `json:"stayType,omitempty"`
	LicensePlate   string `json:"licensePlate,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	KeepUpdated    bool   `json:"keepUpdated,omitempty"`
	AgreeTerms     bool   `json:"agreeTerms,omitempty"`
}

// DefaultBookingDetails returns the booking a fresh wizard starts with:
// one night, one visitor, no electricity.
func DefaultBookingDetails() BookingDetails {
	return BookingDetails{NrOfNights: 1, NrOfVisitors: 1, UseElectricity: false}
}

// BookingUpdate is a partial change to BookingDetails.  Nil fields are
// left untouched.  The validate tags are checked by the HTTP layer and by
// the session store before anything is written.
type BookingUpdate struct {
	NrOfNights     *int    `json:"nrOfNights,omitempty" validate:"omitempty,min=1"`
	NrOfVisitors   *int    `json:"nrOfVisitors,omitempty" validate:"omitempty,min=1"`
	UseElectricity *bool   `json:"useElectricity,omitempty"`
	StayType       *string `json:"stayType,omitempty" validate:"omitempty,oneof=night water reservation"`
	LicensePlate   *string `json:"licensePlate,omitempty" validate:"omitempty,min=2,max=16"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,e164"`
	KeepUpdated    *bool   `json:"keepUpdated,omitempty"`
	AgreeTerms     *bool   `json:"agreeTerms,omitempty"`
}

// Apply returns b with every non-nil field of u copied over it.
func (u BookingUpdate) Apply(b BookingDetails) BookingDetails {
	if u.NrOfNights != nil {
		b.NrOfNights = *u.NrOfNights
	}
	if u.NrOfVisitors != nil {
		b.NrOfVisitors = *u.NrOfVisitors
	}
	if u.UseElectricity != nil {
		b.UseElectricity = *u.UseElectricity
	}
	if u.StayType != nil {
		b.StayType = *u.StayType
	}
	if u.LicensePlate != nil {
		b.LicensePlate = *u.LicensePlate
	}
	if u.Email != nil {
		b.Email = *u.Email
	}
	if u.Phone != nil {
		b.Phone = *u.Phone
	}
	if u.KeepUpdated != nil {
		b.KeepUpdated = *u.KeepUpdated
	}
	if u.AgreeTerms != nil {
		b.AgreeTerms = *u.AgreeTerms
	}
	return b
}
