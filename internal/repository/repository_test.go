package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/camper-area-registration/internal/model"
)

func TestSiteRepoGetBySiteID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	config := `{"name":"Lakeside","reservationsAllowed":true,"maxNrOfNights":3,"status":"active"}`
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, site_id, config FROM sites WHERE site_id = ? LIMIT 1")).
		WithArgs("LAKE01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "site_id", "config"}).AddRow(7, "LAKE01", []byte(config)))

	site, err := NewSiteRepo(db).GetBySiteID(context.Background(), " LAKE01 ")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if site.ID != "7" || site.SiteID != "LAKE01" || !site.ReservationsAllowed || site.MaxNrOfNights != 3 {
		t.Fatalf("unexpected site %+v", site)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSiteRepoNotFoundAndInactive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewSiteRepo(db)

	mock.ExpectQuery("SELECT id, site_id, config FROM sites").
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "site_id", "config"}))
	if _, err := repo.GetBySiteID(context.Background(), "NOPE"); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("expected ErrSiteNotFound, got %v", err)
	}

	mock.ExpectQuery("SELECT id, site_id, config FROM sites").
		WithArgs("OLD").
		WillReturnRows(sqlmock.NewRows([]string{"id", "site_id", "config"}).AddRow(1, "OLD", []byte(`{"status":"disabled"}`)))
	if _, err := repo.GetBySiteID(context.Background(), "OLD"); !errors.Is(err, ErrSiteInactive) {
		t.Fatalf("expected ErrSiteInactive, got %v", err)
	}

	if _, err := repo.GetBySiteID(context.Background(), "  "); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("blank code: %v", err)
	}
}

func TestAreaRuleRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM area_rules").
		WithArgs("LAKE01", "de", "en", "de").
		WillReturnRows(sqlmock.NewRows([]string{"id", "site_id", "language", "rules", "created_at", "updated_at"}).
			AddRow(3, "LAKE01", "en", "No campfires.", created, nil))

	ar, err := NewAreaRuleRepo(db).Get(context.Background(), "LAKE01", "de")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ar.ID != "3" || ar.Language != "en" || ar.Rules != "No campfires." {
		t.Fatalf("unexpected rules %+v", ar)
	}
	if ar.CreatedAt == nil || ar.CreatedAt.Time != "2025-04-01T08:00:00Z" || ar.UpdatedAt != nil {
		t.Fatalf("unexpected timestamps %+v %+v", ar.CreatedAt, ar.UpdatedAt)
	}

	mock.ExpectQuery("FROM area_rules").
		WillReturnRows(sqlmock.NewRows([]string{"id", "site_id", "language", "rules", "created_at", "updated_at"}))
	if _, err := NewAreaRuleRepo(db).Get(context.Background(), "LAKE01", "fr"); !errors.Is(err, ErrAreaRuleNotFound) {
		t.Fatalf("expected ErrAreaRuleNotFound, got %v", err)
	}
}

func TestRegistrationRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC)
	reg := &model.Registration{
		Reference: "ref-1", SiteID: "LAKE01", LicensePlate: "ab-12 cd", Email: "a@b.nl",
		StayType: model.StayNight, NrOfNights: 2, NrOfVisitors: 2, TotalCents: 3000, CreatedAt: at,
	}
	mock.ExpectExec("INSERT INTO registrations").
		WithArgs("ref-1", "LAKE01", "AB12CD", "a@b.nl", "", false, "night", 2, 2, false, int64(3000), at).
		WillReturnResult(sqlmock.NewResult(42, 1))

	if err := NewRegistrationRepo(db).Create(context.Background(), reg); err != nil {
		t.Fatalf("create: %v", err)
	}
	if reg.ID != 42 || reg.LicensePlate != "AB12CD" {
		t.Fatalf("unexpected registration %+v", reg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRegistrationRepoNightsInPeriod(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	since := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(nr_of_nights\\), 0\\) FROM registrations").
		WithArgs("LAKE01", "AB12CD", since).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(4))

	n, err := NewRegistrationRepo(db).NightsInPeriod(context.Background(), "LAKE01", "ab 12-cd", since)
	if err != nil || n != 4 {
		t.Fatalf("got %d, %v", n, err)
	}
}
