package profile

import (
	"strings"
	"unicode"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// confusables maps visually deceptive characters to the Latin letters they
// imitate. A curated slice of the Unicode confusables table limited to the
// scripts actually seen in lookalike domains.
var confusables = map[rune]string{
	// Cyrillic
	'а': "a", 'е': "e", 'о': "o", 'р': "p", 'с': "c", 'х': "x",
	'у': "y", 'і': "i", 'ѕ': "s", 'ј': "j", 'ԁ': "d", 'һ': "h",
	'ԛ': "q", 'ѡ': "w", 'в': "b", 'м': "m", 'н': "h", 'т': "t", 'к': "k",
	// Greek
	'ο': "o", 'α': "a", 'ν': "v", 'ρ': "p", 'τ': "t", 'υ': "u",
	'κ': "k", 'η': "n", 'ι': "i", 'ε': "e",
	// Latin lookalikes and digits
	'ł': "l", 'ı': "i", 'ƅ': "b", 'ꞵ': "b",
	'0': "o", '1': "l", '3': "e", '5': "s",
	// Fullwidth forms are handled by NFKD, but the most common survivors:
	'ɑ': "a", 'ʏ': "y", 'ɡ': "g",
}

// Skeleton reduces a hostname to its confusable skeleton: NFKD-decomposed,
// accents stripped, deceptive characters folded to their Latin targets.
// Two hostnames with equal skeletons render near-identically.
func Skeleton(host string) string {
	host = strings.ToLower(host)

	// Punycode-encoded labels carry the deceptive characters; decode first.
	if decoded, err := idna.Lookup.ToUnicode(host); err == nil {
		host = decoded
	}

	var sb strings.Builder
	for _, r := range norm.NFKD.String(host) {
		if unicode.Is(unicode.Mn, r) {
			continue // combining marks carry no shape of their own
		}
		if mapped, ok := confusables[r]; ok {
			sb.WriteString(mapped)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// HomoglyphDetector compares hostname skeletons against a watch-list of
// high-value brand hosts.
type HomoglyphDetector struct {
	watchlist map[string]string // skeleton -> literal watch-list host
}

// NewHomoglyphDetector precomputes skeletons for the watch-list
func NewHomoglyphDetector(hosts []string) *HomoglyphDetector {
	d := &HomoglyphDetector{watchlist: make(map[string]string, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(h)
		d.watchlist[Skeleton(h)] = h
	}
	return d
}

// Check reports whether host's skeleton collides with a watch-list entry
// while being a different literal string, and which brand host it imitates.
func (d *HomoglyphDetector) Check(host string) (bool, string) {
	host = strings.ToLower(host)
	target, ok := d.watchlist[Skeleton(host)]
	if !ok {
		return false, ""
	}
	if unicodeForm(host) == target || host == target {
		return false, ""
	}
	return true, target
}

func unicodeForm(host string) string {
	if decoded, err := idna.Lookup.ToUnicode(host); err == nil {
		return decoded
	}
	return host
}
