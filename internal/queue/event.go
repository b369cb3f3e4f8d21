// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.
const (
	RegistrationCompletedQueue = "registration.completed"
	ContactMessageQueue        = "contact.message"
)

// RegistrationCompletedEvent is published when a visitor finishes the
// wizard.  It carries enough for downstream consumers (confirmation
// mail, gate control, reporting) to act without querying the database.
type RegistrationCompletedEvent struct {
	RegistrationID uint64  `json:"registration_id"`
	Reference      string  `json:"reference"`
	SiteID         string  `json:"site_id"`
	SiteName       string  `json:"site_name"`
	LicensePlate   string  `json:"license_plate"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone,omitempty"`
	Language       string  `json:"language"`
	StayType       string  `json:"stay_type"`
	NrOfNights     int     `json:"nr_of_nights"`
	NrOfVisitors   int     `json:"nr_of_visitors"`
	Electricity    bool    `json:"electricity"`
	TotalCents     int64   `json:"total_cents"`
	EmailCopy      bool    `json:"email_copy"`
	SiteEmail      string  `json:"site_email,omitempty"`
	CompletedAt    string  `json:"completed_at"`
}

// ContactMessageEvent is published when a visitor sends a message to the
// area operator from the SendMail page.
type ContactMessageEvent struct {
	SiteID    string `json:"site_id,omitempty"`
	To        string `json:"to"`
	From      string `json:"from"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Language  string `json:"language"`
	CreatedAt string `json:"created_at"`
}
