package flow

import (
	"testing"

	"github.com/iliyamo/camper-area-registration/internal/model"
)

func choiceSite() *model.Site  { return &model.Site{SiteID: "s1", ReservationsAllowed: true} }
func waterSite() *model.Site   { return &model.Site{SiteID: "s2", OnlyWaterOption: true} }
func welcomeSite() *model.Site { return &model.Site{SiteID: "s3"} }

func TestEveryPageIsClassified(t *testing.T) {
	for _, p := range AllPages() {
		if classify(p) == classUnknown {
			t.Fatalf("page %s has no class", p)
		}
	}
}

func TestOpenPagesAlwaysAllowed(t *testing.T) {
	sites := []*model.Site{nil, choiceSite(), welcomeSite()}
	for _, target := range []Page{Home, AreaHome, SendMail} {
		for _, origin := range AllPages() {
			for _, site := range sites {
				got := Decide(target, origin, site)
				if got != (Decision{Outcome: Allow, Target: target}) {
					t.Fatalf("Decide(%s, %s, %v) = %+v, want allow", target, origin, site, got)
				}
			}
		}
	}
}

func TestNoSiteRedirectsHome(t *testing.T) {
	for _, target := range AllPages() {
		if classify(target) == classOpen {
			continue
		}
		for _, origin := range AllPages() {
			got := Decide(target, origin, nil)
			if got.Outcome != Redirect || got.Target != Home {
				t.Fatalf("Decide(%s, %s, nil) = %+v, want redirect Home", target, origin, got)
			}
		}
	}
}

func TestUnknownPageRedirectsHome(t *testing.T) {
	got := Decide(Page(99), Home, choiceSite())
	if got.Outcome != Redirect || got.Target != Home {
		t.Fatalf("got %+v, want redirect Home", got)
	}
}

func TestWelcomeRedirectsToChoiceWhenReservationsAllowed(t *testing.T) {
	got := Decide(Welcome, Home, choiceSite())
	if got.Outcome != Redirect || got.Target != Choice {
		t.Fatalf("got %+v, want redirect Choice", got)
	}
}

func TestChoiceRedirectsToWelcomeWithoutFlags(t *testing.T) {
	got := Decide(Choice, Home, welcomeSite())
	if got.Outcome != Redirect || got.Target != Welcome {
		t.Fatalf("got %+v, want redirect Welcome", got)
	}
}

func TestOnlyWaterOptionSelectsChoiceBranch(t *testing.T) {
	if got := EntryPage(waterSite()); got != Choice {
		t.Fatalf("EntryPage = %s, want Choice", got)
	}
	if got := Decide(Choice, Home, waterSite()); got.Outcome != Allow {
		t.Fatalf("got %+v, want allow", got)
	}
}

func TestChoiceSequenceIsTraversable(t *testing.T) {
	site := choiceSite()
	path := []Page{Home, Choice, Nights, License, AboutYou, PaymentSummary, RegistrationFinished}
	for i := 1; i < len(path); i++ {
		got := Decide(path[i], path[i-1], site)
		if got.Outcome != Allow || got.Target != path[i] {
			t.Fatalf("step %s -> %s: got %+v", path[i-1], path[i], got)
		}
	}
}

func TestWelcomeSequenceIsTraversable(t *testing.T) {
	site := welcomeSite()
	path := []Page{Home, Welcome, Nights, License, AboutYou, PaymentSummary, RegistrationFinished}
	for i := 1; i < len(path); i++ {
		if got := Decide(path[i], path[i-1], site); got.Outcome != Allow {
			t.Fatalf("step %s -> %s: got %+v", path[i-1], path[i], got)
		}
	}
}

func TestSkippingAStepRedirectsToEntry(t *testing.T) {
	cases := []struct {
		name           string
		target, origin Page
		site           *model.Site
		want           Page
	}{
		{"skip nights", License, Choice, choiceSite(), Choice},
		{"direct load", AboutYou, Home, welcomeSite(), Welcome},
		{"back navigation past nights", License, PaymentSummary, choiceSite(), Choice},
		{"inactive branch edge", Welcome, Home, choiceSite(), Choice},
		{"terminal has no successor", License, RegistrationFinished, welcomeSite(), Welcome},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.target, tc.origin, tc.site)
			if got.Outcome != Redirect || got.Target != tc.want {
				t.Fatalf("got %+v, want redirect %s", got, tc.want)
			}
		})
	}
}

func TestNightsReachableFromAnyStep(t *testing.T) {
	for _, site := range []*model.Site{choiceSite(), waterSite(), welcomeSite()} {
		for _, origin := range AllPages() {
			if got := Decide(Nights, origin, site); got.Outcome != Allow || got.Target != Nights {
				t.Fatalf("site %s from %s: got %+v", site.SiteID, origin, got)
			}
		}
	}
	if got := Decide(Nights, AboutYou, nil); got.Outcome != Redirect || got.Target != Home {
		t.Fatalf("without site: got %+v", got)
	}
}

func TestErrorPageReachableOnceSiteLoaded(t *testing.T) {
	for _, origin := range AllPages() {
		if got := Decide(ErrorMaxNights, origin, welcomeSite()); got.Outcome != Allow {
			t.Fatalf("from %s: got %+v", origin, got)
		}
	}
}

func TestBranchFollowsFlagChanges(t *testing.T) {
	site := welcomeSite()
	if got := Decide(Choice, Home, site); got.Target != Welcome {
		t.Fatalf("before flag change: got %+v", got)
	}
	site.ReservationsAllowed = true
	if got := Decide(Choice, Home, site); got.Outcome != Allow {
		t.Fatalf("after flag change: got %+v", got)
	}
	if got := Decide(Welcome, Home, site); got.Target != Choice || got.Outcome != Redirect {
		t.Fatalf("old entry page after flag change: got %+v", got)
	}
}
