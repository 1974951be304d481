package profile

import (
	"net"
	"strings"
)

// SuffixResolver maps hostnames to their registrable domain (eTLD+1) using
// a public-suffix rule table. Rules may be plain ("co.uk"), wildcard
// ("*.ck") or exception ("!www.ck"); exception beats wildcard beats plain.
type SuffixResolver struct {
	plain     map[string]bool
	wildcard  map[string]bool // keyed by the base under the "*" label
	exception map[string]bool
}

// NewSuffixResolver builds a resolver from rule strings
func NewSuffixResolver(rules []string) *SuffixResolver {
	r := &SuffixResolver{
		plain:     make(map[string]bool),
		wildcard:  make(map[string]bool),
		exception: make(map[string]bool),
	}
	for _, rule := range rules {
		rule = strings.ToLower(strings.TrimSpace(rule))
		switch {
		case rule == "" || strings.HasPrefix(rule, "//"):
		case strings.HasPrefix(rule, "!"):
			r.exception[rule[1:]] = true
		case strings.HasPrefix(rule, "*."):
			r.wildcard[rule[2:]] = true
		default:
			r.plain[rule] = true
		}
	}
	return r
}

// defaultSuffixRules covers the TLDs and multi-label suffixes the pipeline
// commonly sees. Not the full PSL; extend as regional packs demand.
var defaultSuffixRules = []string{
	"com", "net", "org", "edu", "gov", "mil", "int", "info", "biz",
	"io", "me", "tv", "cc", "ly", "gl", "gd", "app", "dev",
	"xyz", "top", "club", "site", "online", "shop", "link", "click",
	"live", "vip", "work", "buzz", "tk", "ml", "ga", "cf", "gq",
	"co", "in", "co.in", "net.in", "org.in", "firm.in", "gen.in", "ac.in", "gov.in", "nic.in",
	"uk", "co.uk", "org.uk", "gov.uk", "ac.uk", "me.uk",
	"au", "com.au", "net.au", "org.au",
	"jp", "co.jp", "ne.jp", "or.jp",
	"br", "com.br", "net.br",
	"cn", "com.cn", "net.cn", "gov.cn",
	"sg", "com.sg", "gov.sg",
	"id", "co.id", "go.id",
	"us", "ca", "de", "fr", "ru", "it", "es", "nl",
	"ck", "*.ck", "!www.ck",
}

// DefaultSuffixResolver returns a resolver over the bundled rule table
func DefaultSuffixResolver() *SuffixResolver {
	return NewSuffixResolver(defaultSuffixRules)
}

// RegistrableDomain returns the eTLD+1 for host. IP literals and hosts with
// no matching rule beyond the implicit "*" pass through sensibly: the
// registrable domain is never empty and falls back to host itself.
func (r *SuffixResolver) RegistrableDomain(host string) string {
	host = strings.ToLower(strings.Trim(host, "."))
	if host == "" || net.ParseIP(host) != nil {
		return host
	}

	labels := strings.Split(host, ".")
	if len(labels) == 1 {
		return host
	}

	suffixLen := r.publicSuffixLen(labels)
	if suffixLen >= len(labels) {
		// The host itself is a public suffix.
		return host
	}
	return strings.Join(labels[len(labels)-suffixLen-1:], ".")
}

// publicSuffixLen returns the label count of the longest matching public
// suffix, honoring exception > wildcard > plain precedence.
func (r *SuffixResolver) publicSuffixLen(labels []string) int {
	longest := 1 // implicit "*" default rule: the bare TLD is a suffix

	for i := 0; i < len(labels); i++ {
		candidate := strings.Join(labels[i:], ".")
		n := len(labels) - i

		if r.exception[candidate] {
			// Exception rules carve the candidate out of a wildcard: the
			// candidate itself is registrable, so the suffix is one shorter.
			return n - 1
		}
		if i+1 < len(labels) && r.wildcard[strings.Join(labels[i+1:], ".")] {
			if n > longest {
				longest = n
			}
		}
		if r.plain[candidate] {
			if n > longest {
				longest = n
			}
		}
	}
	return longest
}
