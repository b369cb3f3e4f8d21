package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/camper-area-registration/internal/model"
)

// FallbackLanguage is used when a site has no rules in the visitor's language.
const FallbackLanguage = "en"

type AreaRuleRepo struct{ db *sql.DB }

func NewAreaRuleRepo(db *sql.DB) *AreaRuleRepo { return &AreaRuleRepo{db: db} }

// Get returns the rules of a site in language, or in English when that
// language has none.
func (r *AreaRuleRepo) Get(ctx context.Context, siteID, language string) (*model.AreaRule, error) {
	const q = `SELECT id, site_id, language, rules, created_at, updated_at
		FROM area_rules
		WHERE site_id = ? AND language IN (?, ?)
		ORDER BY language = ? DESC
		LIMIT 1`
	var (
		ar        model.AreaRule
		id        uint64
		createdAt time.Time
		updatedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, siteID, language, FallbackLanguage, language).
		Scan(&id, &ar.SiteID, &ar.Language, &ar.Rules, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAreaRuleNotFound
		}
		return nil, err
	}
	ar.ID = fmt.Sprint(id)
	ar.CreatedAt = &model.TimeStamp{Time: createdAt.UTC().Format(time.RFC3339)}
	if updatedAt.Valid {
		ar.UpdatedAt = &model.TimeStamp{Time: updatedAt.Time.UTC().Format(time.RFC3339)}
	}
	return &ar, nil
}
