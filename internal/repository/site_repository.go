// Package repository contains data access logic separated from HTTP handlers.
// This file loads site configurations.  A site's configuration is stored
// as a JSON document next to its public code so that new flags do not
// require a schema change.
package repository

import (
	"context"      // context carries deadlines for DB operations
	"database/sql" // sql provides generic database operations
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/camper-area-registration/internal/model"
)

// SiteRepo encapsulates the queries on the `sites` table.
type SiteRepo struct {
	db *sql.DB // db is the underlying connection pool
}

// NewSiteRepo constructs a SiteRepo with the provided DB handle.
func NewSiteRepo(db *sql.DB) *SiteRepo {
	return &SiteRepo{db: db}
}

// GetBySiteID fetches the site with the given public code (the value
// encoded in the area's QR code).  It returns ErrSiteNotFound when no row
// matches and ErrSiteInactive when the site has been switched off.
func (r *SiteRepo) GetBySiteID(ctx context.Context, siteID string) (*model.Site, error) {
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return nil, ErrSiteNotFound
	}
	const q = "SELECT id, site_id, config FROM sites WHERE site_id = ? LIMIT 1"
	var (
		id     uint64
		code   string
		config []byte
	)
	if err := r.db.QueryRowContext(ctx, q, siteID).Scan(&id, &code, &config); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	var s model.Site
	if err := json.Unmarshal(config, &s); err != nil {
		return nil, fmt.Errorf("decode site %s: %w", code, err)
	}
	if s.ID == "" {
		s.ID = fmt.Sprint(id)
	}
	s.SiteID = code
	if s.Status != "" && !strings.EqualFold(s.Status, "active") {
		return nil, ErrSiteInactive
	}
	return &s, nil
}
