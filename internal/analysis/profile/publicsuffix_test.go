package profile_test

import (
	"testing"

	"smishguard/internal/analysis/profile"
)

func TestRegistrableDomain(t *testing.T) {
	r := profile.DefaultSuffixResolver()

	cases := []struct {
		host string
		want string
	}{
		{"example.com", "example.com"},
		{"www.example.com", "example.com"},
		{"a.b.example.com", "example.com"},
		{"foo.bar.co.uk", "bar.co.uk"},
		{"a.b.example.co.in", "example.co.in"},
		{"example.unlistedtld", "example.unlistedtld"},
		{"deep.example.unlistedtld", "example.unlistedtld"},
		{"192.168.1.1", "192.168.1.1"},
		{"co.uk", "co.uk"},
		{"Example.COM.", "example.com"},
	}
	for _, tc := range cases {
		if got := r.RegistrableDomain(tc.host); got != tc.want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", tc.host, got, tc.want)
		}
	}
}

func TestWildcardAndExceptionRules(t *testing.T) {
	r := profile.DefaultSuffixResolver()

	// *.ck makes every second-level label a public suffix.
	if got := r.RegistrableDomain("shop.bar.ck"); got != "shop.bar.ck" {
		t.Errorf("wildcard rule: got %q, want shop.bar.ck", got)
	}

	// !www.ck carves www.ck back out of the wildcard.
	if got := r.RegistrableDomain("www.ck"); got != "www.ck" {
		t.Errorf("exception rule: got %q, want www.ck", got)
	}
	if got := r.RegistrableDomain("sub.www.ck"); got != "www.ck" {
		t.Errorf("exception rule with subdomain: got %q, want www.ck", got)
	}
}
