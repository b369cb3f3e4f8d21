// Package flow decides, before every page navigation, whether the visitor
// may proceed, must be sent to another step, or must start over at Home.
package flow

import "strings"

// Page identifies one screen of the registration wizard.
type Page int

const (
	Home Page = iota
	Choice
	Welcome
	Nights
	License
	AboutYou
	PaymentSummary
	RegistrationFinished
	AreaHome
	SendMail
	ErrorMaxNights
)

var pageNames = [...]string{
	Home:                 "Home",
	Choice:               "Choice",
	Welcome:              "Welcome",
	Nights:               "Nights",
	License:              "License",
	AboutYou:             "AboutYou",
	PaymentSummary:       "PaymentSummary",
	RegistrationFinished: "RegistrationFinished",
	AreaHome:             "AreaHome",
	SendMail:             "SendMail",
	ErrorMaxNights:       "ErrorMaxNights",
}

var pagePaths = [...]string{
	Home:                 "/",
	Choice:               "/choice",
	Welcome:              "/welcome",
	Nights:               "/nights",
	License:              "/license",
	AboutYou:             "/about-you",
	PaymentSummary:       "/payment-summary",
	RegistrationFinished: "/registration-finished",
	AreaHome:             "/area-home",
	SendMail:             "/send-mail",
	ErrorMaxNights:       "/error-max-nights",
}

// AllPages lists every page in declaration order.
func AllPages() []Page {
	pages := make([]Page, 0, len(pageNames))
	for p := range pageNames {
		pages = append(pages, Page(p))
	}
	return pages
}

func (p Page) valid() bool { return p >= Home && int(p) < len(pageNames) }

func (p Page) String() string {
	if !p.valid() {
		return "Unknown"
	}
	return pageNames[p]
}

// Path is the URL path the page is served on.  Unknown pages map to Home.
func (p Page) Path() string {
	if !p.valid() {
		return pagePaths[Home]
	}
	return pagePaths[p]
}

// LookupPath returns the page served on path.  Trailing slashes are
// ignored; the query string must already be stripped.
func LookupPath(path string) (Page, bool) {
	path = strings.TrimSpace(path)
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	for p, candidate := range pagePaths {
		if candidate == path {
			return Page(p), true
		}
	}
	return Home, false
}

// PageFromPath is LookupPath with the unmatched-path fallback to Home.
func PageFromPath(path string) Page {
	p, _ := LookupPath(path)
	return p
}

// ParseName returns the page with the given name (e.g. "AboutYou").
func ParseName(name string) (Page, bool) {
	for p, candidate := range pageNames {
		if strings.EqualFold(candidate, name) {
			return Page(p), true
		}
	}
	return Home, false
}
