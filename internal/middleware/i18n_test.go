package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func resolveLocale(t *testing.T, build func(r *http.Request), lookup CountryLookup) string {
	t.Helper()
	var got string
	handler := I18N("en", lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/generate", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	if build != nil {
		build(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestI18NExplicitHeaderWins(t *testing.T) {
	got := resolveLocale(t, func(r *http.Request) {
		r.Header.Set("X-Locale", "ID")
		r.Header.Set("Accept-Language", "en-US")
	}, nil)
	if got != "id" {
		t.Fatalf("expected id, got %q", got)
	}
}

func TestI18NAcceptLanguage(t *testing.T) {
	cases := map[string]string{
		"id-ID,id;q=0.9,en;q=0.5": "id",
		"en-GB,en;q=0.9":          "en",
	}
	for header, want := range cases {
		got := resolveLocale(t, func(r *http.Request) {
			r.Header.Set("Accept-Language", header)
		}, nil)
		if got != want {
			t.Fatalf("header %q: expected %q, got %q", header, want, got)
		}
	}
}

func TestI18NGeoIPFallback(t *testing.T) {
	var lookedUp string
	got := resolveLocale(t, nil, func(ip string) (string, error) {
		lookedUp = ip
		return "ID", nil
	})
	if got != "id" {
		t.Fatalf("expected id via geoip, got %q", got)
	}
	if lookedUp != "203.0.113.7" {
		t.Fatalf("expected remote addr host, got %q", lookedUp)
	}
}

func TestI18NLookupErrorFallsBackToDefault(t *testing.T) {
	got := resolveLocale(t, nil, func(ip string) (string, error) {
		return "", errors.New("database unavailable")
	})
	if got != "en" {
		t.Fatalf("expected default en, got %q", got)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:80"
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	if got := ClientIP(req); got != "198.51.100.4" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
}
