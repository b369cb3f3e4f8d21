// Package i18n resolves the visitor's language and looks up the display
// strings of the registration pages.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "camper_lang"
)

var supportedTags = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Spanish,
	language.Dutch,
}

var tagMatcher = language.NewMatcher(supportedTags)

//go:embed locales/*.json
var localeFS embed.FS

// tables maps a base language code ("en") to its flattened messages.
var tables = mustLoadTables(localeFS)

// Supported returns the supported language tags, English first.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Default returns the fallback language.
func Default() language.Tag { return language.English }

// Code returns the two letter code used for tables and area rules.
func Code(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// Match picks the supported language closest to the given preferences.
// Anything unsupported resolves to English.
func Match(prefs ...language.Tag) language.Tag {
	if len(prefs) == 0 {
		return Default()
	}
	_, idx, conf := tagMatcher.Match(prefs...)
	if conf == language.No {
		return Default()
	}
	return supportedTags[idx]
}

// Parse resolves a single language value such as "de" or "nl-BE".
func Parse(value string) (language.Tag, bool) {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return language.Tag{}, false
	}
	code := Code(tag)
	for _, t := range supportedTags {
		if Code(t) == code {
			return t, true
		}
	}
	return language.Tag{}, false
}

// ResolveTag determines the language for a request: the lang query
// parameter, then the language cookie, then Accept-Language.  The bool
// reports whether the query parameter selected it and should be
// persisted with SetLanguageCookie.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return Default(), false
	}
	if v := r.URL.Query().Get(LangParam); v != "" {
		if tag, ok := Parse(v); ok {
			return tag, true
		}
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := Parse(cookie.Value); ok {
			return tag, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if prefs, _, err := language.ParseAcceptLanguage(accept); err == nil {
			return Match(prefs...), false
		}
	}
	return Default(), false
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    Code(tag),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// T returns the message for key in the given language.  Placeholders of
// the form {name} are replaced from params.  Missing keys fall back to
// English and then to the key itself.
func T(tag language.Tag, key string, params map[string]any) string {
	msg, ok := tables[Code(tag)][key]
	if !ok {
		msg, ok = tables[Code(Default())][key]
	}
	if !ok {
		return key
	}
	return Format(msg, params)
}

// Format replaces {name} placeholders in msg from params.  Unknown
// placeholders are left as they are.
func Format(msg string, params map[string]any) string {
	if len(params) == 0 {
		return msg
	}
	pairs := make([]string, 0, 2*len(params))
	for name, v := range params {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Section returns every message under prefix (e.g. "nights") keyed by the
// remainder of its key, with English filling any gaps.
func Section(tag language.Tag, prefix string) map[string]string {
	out := map[string]string{}
	p := prefix + "."
	for _, code := range []string{Code(Default()), Code(tag)} {
		for k, v := range tables[code] {
			if strings.HasPrefix(k, p) {
				out[strings.TrimPrefix(k, p)] = v
			}
		}
	}
	return out
}

// Messages returns the whole table for a language, English filling gaps.
func Messages(tag language.Tag) map[string]string {
	out := make(map[string]string, len(tables[Code(Default())]))
	for _, code := range []string{Code(Default()), Code(tag)} {
		for k, v := range tables[code] {
			out[k] = v
		}
	}
	return out
}

// Keys lists the message keys of a language in sorted order.
func Keys(tag language.Tag) []string {
	keys := make([]string, 0, len(tables[Code(tag)]))
	for k := range tables[Code(tag)] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mustLoadTables(fsys fs.FS) map[string]map[string]string {
	t, err := loadTables(fsys)
	if err != nil {
		panic(err)
	}
	return t
}

func loadTables(fsys fs.FS) (map[string]map[string]string, error) {
	paths, err := fs.Glob(fsys, "locales/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	out := make(map[string]map[string]string, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var tree map[string]any
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		flat := map[string]string{}
		flatten("", tree, flat)
		out[strings.TrimSuffix(path.Base(p), ".json")] = flat
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]any:
			flatten(key, t, out)
		case string:
			out[key] = t
		default:
			out[key] = fmt.Sprint(t)
		}
	}
}
