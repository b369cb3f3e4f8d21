package model

import "time"

// Registration is a completed wizard run as stored in the
// `registrations` table.
//
// Fields:
//  ID            – primary key identifier.
//  Reference     – public reference handed to the visitor.
//  SiteID        – site the visitor registered at.
//  LicensePlate  – normalized vehicle plate.
//  Email, Phone  – contact details from the AboutYou step.
//  StayType      – night, water or reservation.
//  NrOfNights    – booked nights.
//  NrOfVisitors  – visitors in the vehicle.
//  Electricity   – whether electricity was booked.
//  TotalCents    – quoted total in euro cents.
//  CreatedAt     – registration time (UTC).
type Registration struct {
	ID           uint64
	Reference    string
	SiteID       string
	LicensePlate string
	Email        string
	Phone        string
	KeepUpdated  bool
	StayType     string
	NrOfNights   int
	NrOfVisitors int
	Electricity  bool
	TotalCents   int64
	CreatedAt    time.Time
}
