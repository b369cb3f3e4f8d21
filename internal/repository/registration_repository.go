package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/camper-area-registration/internal/model"
)

// RegistrationRepo persists completed registrations.
type RegistrationRepo struct{ db *sql.DB }

func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

// NormalizePlate upper-cases a license plate and strips spaces and dashes
// so that "ab-12 cd" and "AB12CD" are counted as the same vehicle.
func NormalizePlate(plate string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(plate) {
		if r == ' ' || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Create inserts reg and fills in its ID and CreatedAt.
func (r *RegistrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	const q = `INSERT INTO registrations
		(reference, site_id, license_plate, email, phone, keep_updated, stay_type,
		 nr_of_nights, nr_of_visitors, electricity, total_cents, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	reg.LicensePlate = NormalizePlate(reg.LicensePlate)
	res, err := r.db.ExecContext(ctx, q,
		reg.Reference, reg.SiteID, reg.LicensePlate, reg.Email, reg.Phone, reg.KeepUpdated, reg.StayType,
		reg.NrOfNights, reg.NrOfVisitors, reg.Electricity, reg.TotalCents, reg.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reg.ID = uint64(id)
	return nil
}

// NightsInPeriod sums the nights a vehicle registered at a site since
// the given time.
func (r *RegistrationRepo) NightsInPeriod(ctx context.Context, siteID, plate string, since time.Time) (int, error) {
	const q = `SELECT COALESCE(SUM(nr_of_nights), 0) FROM registrations
		WHERE site_id = ? AND license_plate = ? AND created_at >= ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, siteID, NormalizePlate(plate), since.UTC()).Scan(&n)
	return n, err
}
