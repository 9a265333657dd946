package app

import (
	"testing"
	"time"
)

func TestExtractOriginHost(t *testing.T) {
	cases := map[string]string{
		"https://onyria.app":          "onyria.app",
		"http://localhost:5173":       "localhost:5173",
		"https://app.onyria.app:8443": "app.onyria.app:8443",
		"not-a-url":                   "not-a-url",
	}
	for origin, want := range cases {
		if got := extractOriginHost(origin); got != want {
			t.Errorf("extractOriginHost(%q) = %q, want %q", origin, got, want)
		}
	}
}

func TestMatchOriginPattern(t *testing.T) {
	cases := []struct {
		pattern string
		host    string
		want    bool
	}{
		{"onyria.app", "onyria.app", true},
		{"onyria.app", "evil.app", false},
		{"*.onyria.app", "app.onyria.app", true},
		{"*.onyria.app", "onyria.app.evil.com", false},
		{"localhost:*", "localhost:5173", true},
		{"localhost:*", "localhost", false},
		{"*", "anything.example", true},
		{"", "onyria.app", false},
	}
	for _, tc := range cases {
		if got := matchOriginPattern(tc.pattern, tc.host); got != tc.want {
			t.Errorf("matchOriginPattern(%q, %q) = %v, want %v", tc.pattern, tc.host, got, tc.want)
		}
	}
}

func TestHumanizeDuration(t *testing.T) {
	cases := map[string]string{
		"45s":  "45s",
		"90m":  "1h0m0s",
		"30h":  "24h0m0s",
		"130s": "2m0s",
	}
	for in, want := range cases {
		d, err := time.ParseDuration(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got := humanizeDuration(d); got != want {
			t.Errorf("humanizeDuration(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestParseTimezoneLocation(t *testing.T) {
	if _, err := parseTimezoneLocation("Europe/Paris"); err != nil {
		t.Errorf("IANA zone rejected: %v", err)
	}
	loc, err := parseTimezoneLocation("+02:00")
	if err != nil {
		t.Fatalf("offset rejected: %v", err)
	}
	if _, offset := time.Now().In(loc).Zone(); offset != 2*3600 {
		t.Errorf("offset = %d, want 7200", offset)
	}
	if _, err := parseTimezoneLocation("Mars/Olympus"); err == nil {
		t.Error("expected error for unknown zone")
	}
}
