package extract_test

import (
	"testing"

	"smishguard/internal/analysis/extract"
	"smishguard/pkg/logger"
)

func newExtractor() *extract.Extractor {
	return extract.New(logger.NewDefault())
}

func TestExtractSchemed(t *testing.T) {
	e := newExtractor()

	links := e.Extract("Your parcel is held, pay at https://example.com/login now")
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if links[0].Host != "example.com" {
		t.Fatalf("expected host example.com, got %q", links[0].Host)
	}
	if links[0].Normalized != "https://example.com/login" {
		t.Fatalf("unexpected normalized form %q", links[0].Normalized)
	}
}

func TestExtractSchemeless(t *testing.T) {
	e := newExtractor()

	links := e.Extract("visit www.example.com. for details")
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if links[0].Scheme != "http" {
		t.Fatalf("schemeless links default to http, got %q", links[0].Scheme)
	}
	if links[0].Host != "www.example.com" {
		t.Fatalf("expected host www.example.com, got %q", links[0].Host)
	}

	links = e.Extract("claim your prize at secure-login.xyz/verify")
	if len(links) != 1 {
		t.Fatalf("expected bare domain with known TLD to be extracted, got %d links", len(links))
	}
	if links[0].Host != "secure-login.xyz" {
		t.Fatalf("expected host secure-login.xyz, got %q", links[0].Host)
	}
}

func TestExtractRejectsNonURLs(t *testing.T) {
	e := newExtractor()

	cases := []string{
		"your bill is Rs 4.99 this month",
		"update to version 2.1.3 today",
		"contact support@example.com for help",
		"no links in this message at all",
		"",
	}
	for _, body := range cases {
		if links := e.Extract(body); len(links) != 0 {
			t.Fatalf("expected no links in %q, got %v", body, links)
		}
	}
}

func TestExtractDeduplicates(t *testing.T) {
	e := newExtractor()

	links := e.Extract("see http://Example.com or http://example.com/ either way")
	if len(links) != 1 {
		t.Fatalf("expected case and slash variants to deduplicate, got %d links", len(links))
	}
	if links[0].Normalized != "http://example.com" {
		t.Fatalf("unexpected normalized form %q", links[0].Normalized)
	}
}

func TestExtractUserInfo(t *testing.T) {
	e := newExtractor()

	links := e.Extract("login at http://bank.com@203.0.113.7/confirm")
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if !links[0].HasUserInfo {
		t.Fatal("expected HasUserInfo for userinfo URL")
	}
	if links[0].Host != "203.0.113.7" {
		t.Fatalf("host must be the real authority, got %q", links[0].Host)
	}
}

func TestExtractPorts(t *testing.T) {
	e := newExtractor()

	links := e.Extract("https://example.com:8443/x and https://example.com:443/y")
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].Port != 8443 {
		t.Fatalf("expected explicit port 8443, got %d", links[0].Port)
	}
	if links[1].Port != 0 {
		t.Fatalf("default port must be elided, got %d", links[1].Port)
	}
}

func TestExtractTrailingPunctuation(t *testing.T) {
	e := newExtractor()

	links := e.Extract("Click https://example.com/win!")
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if links[0].Path != "/win" {
		t.Fatalf("trailing punctuation must be stripped, got path %q", links[0].Path)
	}
}

func TestExtractUnicodeHost(t *testing.T) {
	e := newExtractor()

	links := e.Extract("pay at https://аpple.com/verify")
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if links[0].Host != "xn--pple-43d.com" {
		t.Fatalf("unicode host must normalize to punycode, got %q", links[0].Host)
	}
}

func TestExtractOrderPreserved(t *testing.T) {
	e := newExtractor()

	links := e.Extract("first https://a.example.com then https://b.example.com")
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].Host != "a.example.com" || links[1].Host != "b.example.com" {
		t.Fatalf("links out of order: %q, %q", links[0].Host, links[1].Host)
	}
}

func TestExtractIPv6Host(t *testing.T) {
	e := newExtractor()

	links := e.Extract("Verify at http://[2001:db8::1]:8080/login immediately")
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if links[0].Host != "2001:db8::1" {
		t.Fatalf("expected bare IPv6 host, got %q", links[0].Host)
	}
	if links[0].Port != 8080 {
		t.Fatalf("expected port 8080, got %d", links[0].Port)
	}
	if links[0].Normalized != "http://[2001:db8::1]:8080/login" {
		t.Fatalf("IPv6 host must stay bracketed in the normalized form, got %q", links[0].Normalized)
	}
}
