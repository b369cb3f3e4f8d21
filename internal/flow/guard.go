package flow

import "github.com/iliyamo/camper-area-registration/internal/model"

// Outcome is what the guard tells the router to do.
type Outcome int

const (
	Allow Outcome = iota
	Redirect
)

func (o Outcome) String() string {
	if o == Allow {
		return "allow"
	}
	return "redirect"
}

// Decision is the result of Decide.  Target is the requested page when
// Outcome is Allow and the redirect destination otherwise.
type Decision struct {
	Outcome Outcome
	Target  Page
}

func allow(p Page) Decision      { return Decision{Outcome: Allow, Target: p} }
func redirectTo(p Page) Decision { return Decision{Outcome: Redirect, Target: p} }

type pageClass int

const (
	classUnknown pageClass = iota
	classOpen              // reachable without a site
	classStep              // part of the linear wizard
	classError             // reachable from anywhere once a site is loaded
)

// classify sorts every page into a class.  New pages must be added here;
// the switch has no default so an unlisted page falls through to
// classUnknown and is bounced to Home.
func classify(p Page) pageClass {
	switch p {
	case Home, AreaHome, SendMail:
		return classOpen
	case Choice, Welcome, Nights, License, AboutYou, PaymentSummary, RegistrationFinished:
		return classStep
	case ErrorMaxNights:
		return classError
	}
	return classUnknown
}

// EntryPage is the first wizard step for the site's current flags.
func EntryPage(site *model.Site) Page {
	if site != nil && site.StartsWithChoice() {
		return Choice
	}
	return Welcome
}

// Sequence returns the ordered wizard steps of the branch selected by the
// site's flags.
func Sequence(site *model.Site) []Page {
	return []Page{EntryPage(site), Nights, License, AboutYou, PaymentSummary, RegistrationFinished}
}

// Next returns the step following origin in the active branch.
func Next(origin Page, site *model.Site) (Page, bool) {
	seq := Sequence(site)
	for i := 0; i < len(seq)-1; i++ {
		if seq[i] == origin {
			return seq[i+1], true
		}
	}
	return Home, false
}

// Decide runs before every navigation from origin to target.  It is
// pure: the branch is derived from site on each call, so flag changes
// take effect on the next navigation.
func Decide(target, origin Page, site *model.Site) Decision {
	class := classify(target)
	if class == classOpen {
		return allow(target)
	}
	if site == nil {
		return redirectTo(Home)
	}
	switch class {
	case classError:
		return allow(target)
	case classUnknown:
		return redirectTo(Home)
	}

	if next, ok := Next(origin, site); ok && next == target {
		return allow(target)
	}
	if isDefaultStep(target, site) {
		return allow(target)
	}
	return redirectTo(EntryPage(site))
}

// isDefaultStep reports whether target may be opened from anywhere once a
// site is loaded: the branch entry page, and Nights, which visitors go
// back to or reload to change the length of their stay.
func isDefaultStep(target Page, site *model.Site) bool {
	return target == EntryPage(site) || target == Nights
}
