package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sites (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		site_id VARCHAR(64) NOT NULL UNIQUE,
		config JSON NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS area_rules (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		site_id VARCHAR(64) NOT NULL,
		language CHAR(2) NOT NULL,
		rules TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NULL ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_area_rules_site_lang (site_id, language)
	)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		reference CHAR(36) NOT NULL UNIQUE,
		site_id VARCHAR(64) NOT NULL,
		license_plate VARCHAR(16) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(32) NOT NULL DEFAULT '',
		keep_updated TINYINT(1) NOT NULL DEFAULT 0,
		stay_type VARCHAR(16) NOT NULL,
		nr_of_nights INT NOT NULL,
		nr_of_visitors INT NOT NULL,
		electricity TINYINT(1) NOT NULL DEFAULT 0,
		total_cents BIGINT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		KEY idx_registrations_plate (site_id, license_plate, created_at)
	)`,
}

// EnsureSchema creates the tables the service needs when they are missing.
// Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	log.Printf("database: schema ensured (%d tables)", len(schema))
	return nil
}
