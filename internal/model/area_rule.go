package model

// AreaRule holds the free-text rules of a site in one language.  Rules
// are reference data and are never modified by the wizard.
//
// Fields:
//  ID        – document identifier.
//  SiteID    – site the rules belong to.
//  Language  – two letter language code (en, de, fr, es, nl).
//  Rules     – rule text as shown on the area pages.
type AreaRule struct {
	ID        string     `json:"id"`
	SiteID    string     `json:"siteID"`
	Language  string     `json:"language"`
	Rules     string     `json:"rules"`
	CreatedAt *TimeStamp `json:"createdAt,omitempty"`
	UpdatedAt *TimeStamp `json:"updatedAt,omitempty"`
}
