// Package repository defines error types that are reused across the
// repositories.  Handlers use these sentinel values to choose the HTTP
// status of a failed lookup.
package repository

import "errors"

// ErrSiteNotFound is returned when no site matches the scanned code.
// Handlers should translate this into an HTTP 404 response.
var ErrSiteNotFound = errors.New("site not found")

// ErrAreaRuleNotFound is returned when a site has no rules in the
// requested language nor in English.
var ErrAreaRuleNotFound = errors.New("area rules not found")

// ErrSiteInactive is returned for sites whose status is not "active".
var ErrSiteInactive = errors.New("site inactive")
