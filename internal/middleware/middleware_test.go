package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/camper-area-registration/internal/config"
	"github.com/iliyamo/camper-area-registration/internal/flow"
	"github.com/iliyamo/camper-area-registration/internal/i18n"
	"github.com/iliyamo/camper-area-registration/internal/model"
	"github.com/iliyamo/camper-area-registration/internal/session"
	"github.com/iliyamo/camper-area-registration/internal/utils"
)

const testSecret = "test-secret"

var testSessionCfg = config.SessionConfig{CookieName: "camper_session", TTL: time.Hour, KeyPrefix: "session"}

// newGuardedEcho serves every wizard page behind the session, store and
// guard middleware; allowed pages answer with their name.
func newGuardedEcho(kv session.KV) *echo.Echo {
	e := echo.New()
	g := e.Group("", Session(testSessionCfg, testSecret), SessionStore(kv, "session"), FlowGuard())
	for _, p := range flow.AllPages() {
		g.GET(p.Path(), func(c echo.Context) error { return c.String(http.StatusOK, PageFrom(c).String()) })
	}
	return e
}

func sessionCookie(t *testing.T) (*http.Cookie, string) {
	t.Helper()
	id := utils.NewSessionID()
	tok, err := utils.NewSessionToken(testSecret, id, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return &http.Cookie{Name: testSessionCfg.CookieName, Value: tok.Token}, id
}

func TestSessionMintsCookie(t *testing.T) {
	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error { seen = SessionID(c); return c.NoContent(http.StatusOK) }, Session(testSessionCfg, testSecret))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "camper_session" || !cookies[0].HttpOnly {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
	id, err := utils.ParseSessionToken(testSecret, cookies[0].Value)
	if err != nil || id != seen {
		t.Fatalf("cookie session %q (%v) != context session %q", id, err, seen)
	}
}

func TestSessionReusesValidCookie(t *testing.T) {
	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error { seen = SessionID(c); return c.NoContent(http.StatusOK) }, Session(testSessionCfg, testSecret))

	ck, id := sessionCookie(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if seen != id {
		t.Fatalf("session = %q, want %q", seen, id)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("valid cookie should not be replaced")
	}
}

func TestFlowGuardWithoutSiteRedirectsHome(t *testing.T) {
	e := newGuardedEcho(session.NewMemoryKV())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nights", nil))
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("got %d -> %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if rec.Header().Get(RedirectHeader) != "Home" {
		t.Fatalf("redirect header = %q", rec.Header().Get(RedirectHeader))
	}
}

func TestFlowGuardFollowsOrigin(t *testing.T) {
	kv := session.NewMemoryKV()
	ck, id := sessionCookie(t)
	st := session.New(kv, "session:"+id)
	if err := st.SetSite(context.Background(), &model.Site{SiteID: "LAKE01", ReservationsAllowed: true}); err != nil {
		t.Fatalf("set site: %v", err)
	}
	e := newGuardedEcho(kv)

	cases := []struct {
		name, url, referer string
		wantCode           int
		wantBody, wantLoc  string
	}{
		{"entry page", "/choice", "", http.StatusOK, "Choice", ""},
		{"next step via referer", "/nights", "http://example.com/choice", http.StatusOK, "Nights", ""},
		{"next step via from param", "/license?from=Nights", "", http.StatusOK, "License", ""},
		{"from as path", "/about-you?from=/license", "", http.StatusOK, "AboutYou", ""},
		{"skipped step", "/license", "http://example.com/choice", http.StatusFound, "", "/choice"},
		{"foreign referer ignored", "/license", "http://evil.test/nights", http.StatusFound, "", "/choice"},
		{"back to nights", "/nights?from=/payment-summary", "", http.StatusOK, "Nights", ""},
		{"wrong branch", "/welcome", "", http.StatusFound, "", "/choice"},
		{"error page", "/error-max-nights", "", http.StatusOK, "ErrorMaxNights", ""},
		{"open page", "/send-mail", "", http.StatusOK, "SendMail", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			req.Host = "example.com"
			req.AddCookie(ck)
			if tc.referer != "" {
				req.Header.Set("Referer", tc.referer)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tc.wantCode)
			}
			if tc.wantBody != "" && rec.Body.String() != tc.wantBody {
				t.Fatalf("body = %q, want %q", rec.Body.String(), tc.wantBody)
			}
			if tc.wantLoc != "" && rec.Header().Get(echo.HeaderLocation) != tc.wantLoc {
				t.Fatalf("location = %q, want %q", rec.Header().Get(echo.HeaderLocation), tc.wantLoc)
			}
		})
	}
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	_, rdb := newMiniRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: time.Hour, KeyStrategy: "ip", Prefix: "rl",
	}
	e := echo.New()
	e.GET("/api/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, rdb))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
		codes = append(codes, rec.Code)
		if i == 2 && rec.Header().Get("Retry-After") == "" {
			t.Fatal("missing Retry-After")
		}
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestTokenBucketDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestParseLimiterResult(t *testing.T) {
	allowed, remaining, retry, ok := parseLimiterResult([]interface{}{int64(1), int64(4), int64(0)})
	if !ok || !allowed || remaining != 4 || retry != 0 {
		t.Fatalf("got %v %d %d %v", allowed, remaining, retry, ok)
	}
	if _, _, _, ok := parseLimiterResult("nope"); ok {
		t.Fatal("expected failure")
	}
}

func TestRedisCacheReplaysPerLanguage(t *testing.T) {
	_, rdb := newMiniRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, KeyStrategy: "route_query_lang", Prefix: "cache"}
	calls := 0
	e := echo.New()
	e.GET("/api/messages", func(c echo.Context) error {
		calls++
		c.SetCookie(&http.Cookie{Name: "camper_session", Value: "private"})
		return c.String(http.StatusOK, c.Request().Header.Get("Accept-Language"))
	}, NewRedisCache(cfg, rdb))

	get := func(lang string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
		req.Header.Set("Accept-Language", lang)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	if rec := get("de"); rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first request X-Cache = %q", rec.Header().Get("X-Cache"))
	}
	hit := get("de")
	if hit.Header().Get("X-Cache") != "HIT" || hit.Body.String() != "de" {
		t.Fatalf("second request: %q %q", hit.Header().Get("X-Cache"), hit.Body.String())
	}
	if hit.Header().Get("Set-Cookie") != "" {
		t.Fatal("cached response replayed a cookie")
	}
	if rec := get("fr"); rec.Header().Get("X-Cache") != "MISS" || rec.Body.String() != "fr" {
		t.Fatalf("other language served from cache: %q", rec.Body.String())
	}
	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2", calls)
	}
}

func TestBuildRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.1.2.3")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/contact")
	c.Set(ctxSessionID, "abc")

	cases := []struct {
		cfg  config.RateLimitConfig
		want string
	}{
		{config.RateLimitConfig{Prefix: "rl", Name: "api"}, "rl:api:ip:10.1.2.3:session:abc:route:POST /api/contact"},
		{config.RateLimitConfig{Prefix: "rl", Name: "submit", KeyStrategy: "session_route"}, "rl:submit:session:abc:route:POST /api/contact"},
		{config.RateLimitConfig{Prefix: "rl", KeyStrategy: "IP"}, "rl:ip:10.1.2.3"},
	}
	for _, tc := range cases {
		if got := buildRateKey(tc.cfg, c); got != tc.want {
			t.Fatalf("%+v: key = %q, want %q", tc.cfg, got, tc.want)
		}
	}
}

func TestRedisCacheSkipsOversizedBodies(t *testing.T) {
	_, rdb := newMiniRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 4}
	calls := 0
	e := echo.New()
	e.GET("/api/sites/:siteID", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "a long body")
	}, NewRedisCache(cfg, rdb))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sites/a", nil))
		if rec.Body.String() != "a long body" {
			t.Fatalf("body = %q", rec.Body.String())
		}
	}
	if calls != 2 {
		t.Fatalf("oversized response was cached: calls = %d", calls)
	}
}

func TestRedisCacheHitPersistsLanguageChoice(t *testing.T) {
	_, rdb := newMiniRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache"}
	e := echo.New()
	e.GET("/api/messages", func(c echo.Context) error {
		tag, persist := i18n.ResolveTag(c.Request())
		if persist {
			i18n.SetLanguageCookie(c.Response(), tag)
		}
		return c.String(http.StatusOK, i18n.Code(tag))
	}, NewRedisCache(cfg, rdb))

	for _, want := range []string{"MISS", "HIT"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/messages?lang=de", nil))
		if rec.Header().Get("X-Cache") != want {
			t.Fatalf("X-Cache = %q, want %q", rec.Header().Get("X-Cache"), want)
		}
		if !strings.Contains(rec.Header().Get(echo.HeaderSetCookie), i18n.LangCookieName+"=de") {
			t.Fatalf("%s: Set-Cookie = %q", want, rec.Header().Get(echo.HeaderSetCookie))
		}
	}
}
