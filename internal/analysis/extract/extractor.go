package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"smishguard/internal/domain/models"
	"smishguard/pkg/logger"
)

// Extractor scans raw message text for embedded URLs and normalizes them.
// Malformed candidates are dropped silently; they must never abort analysis.
type Extractor struct {
	logger *logger.Logger
}

// New creates a new Extractor
func New(log *logger.Logger) *Extractor {
	return &Extractor{logger: log.WithComponent("extractor")}
}

var (
	// Absolute URLs with an explicit scheme, incl. userinfo, IP literals and ports.
	schemedRe = regexp.MustCompile(`(?i)\b(?:https?|ftp)://[^\s<>"']+`)

	// Scheme-less candidates: www.-prefixed hosts or bare domains whose final
	// label must survive the TLD token check below.
	schemelessRe = regexp.MustCompile(`(?i)(?:^|[\s(\[<])((?:www\.)?[\p{L}\p{N}][\p{L}\p{N}-]*(?:\.[\p{L}\p{N}-]+)+(?::\d{1,5})?(?:/[^\s<>"']*)?)`)
)

// tldTokens is the set of final labels accepted for scheme-less candidates.
// Deliberately conservative: decimal prices, version strings and similar
// dotted tokens must never survive it.
var tldTokens = map[string]bool{
	"com": true, "net": true, "org": true, "info": true, "biz": true,
	"io": true, "co": true, "in": true, "uk": true, "us": true, "de": true,
	"au": true, "ca": true, "fr": true, "jp": true, "cn": true, "ru": true,
	"br": true, "sg": true, "id": true, "me": true, "tv": true, "cc": true,
	"ly": true, "gl": true, "gd": true, "app": true, "dev": true, "xyz": true,
	"top": true, "club": true, "site": true, "online": true, "shop": true,
	"link": true, "click": true, "live": true, "vip": true, "work": true,
	"buzz": true, "tk": true, "ml": true, "ga": true, "cf": true, "gq": true,
	"gov": true, "edu": true, "mil": true, "int": true,
}

// defaultPorts maps schemes to their implicit ports
var defaultPorts = map[string]int{"http": 80, "https": 443, "ftp": 21}

// Extract returns the deduplicated links found in body, in order of first
// appearance. Deduplication is by normalized form, not original substring.
func (e *Extractor) Extract(body string) []models.Link {
	if strings.TrimSpace(body) == "" {
		return nil
	}

	var links []models.Link
	seen := make(map[string]bool)

	add := func(raw, candidate string) {
		link, ok := e.parse(raw, candidate)
		if !ok {
			return
		}
		if seen[link.Normalized] {
			return
		}
		seen[link.Normalized] = true
		links = append(links, link)
	}

	for _, m := range schemedRe.FindAllString(body, -1) {
		raw := trimTrailing(m)
		add(raw, raw)
	}

	for _, m := range schemelessRe.FindAllStringSubmatchIndex(body, -1) {
		start, end := m[2], m[3]
		// Reject the host part of an email address.
		if start > 0 && body[start-1] == '@' {
			continue
		}
		raw := trimTrailing(body[start:end])
		if !e.acceptSchemeless(raw) {
			continue
		}
		add(raw, "http://"+raw)
	}

	return links
}

// acceptSchemeless filters bare-domain candidates: either a www. prefix or a
// recognized TLD as the final host label.
func (e *Extractor) acceptSchemeless(raw string) bool {
	host := raw
	if i := strings.IndexAny(host, "/:?"); i >= 0 {
		host = host[:i]
	}
	if strings.HasPrefix(strings.ToLower(host), "www.") {
		return true
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	last := strings.ToLower(labels[len(labels)-1])
	if !tldTokens[last] {
		return false
	}
	// Every other label must contain something besides digits, otherwise
	// "4.1.in" style version fragments would slip through.
	nonNumeric := false
	for _, l := range labels[:len(labels)-1] {
		if l == "" {
			return false
		}
		if strings.IndexFunc(l, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			nonNumeric = true
		}
	}
	return nonNumeric
}

// parse decomposes a candidate into a Link, or reports failure
func (e *Extractor) parse(original, candidate string) (models.Link, bool) {
	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		e.logger.Debug().Str("candidate", candidate).Msg("dropping malformed url candidate")
		return models.Link{}, false
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())

	// Unicode hosts are normalized to their punycode (ACE) form so that
	// visually distinct spellings of the same host deduplicate together.
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}

	port := 0
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return models.Link{}, false
		}
		if n != defaultPorts[scheme] {
			port = n
		}
	}

	path := u.EscapedPath()
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}

	var query map[string]string
	if q := u.Query(); len(q) > 0 {
		query = make(map[string]string, len(q))
		for k, vs := range q {
			if len(vs) > 0 {
				query[k] = vs[0]
			}
		}
	}

	// IPv6 literals lose their brackets in Hostname(); restore them so the
	// normalized form stays a valid URL for downstream consumers.
	normHost := host
	if strings.Contains(normHost, ":") {
		normHost = "[" + normHost + "]"
	}
	normalized := scheme + "://" + normHost
	if port != 0 {
		normalized += ":" + strconv.Itoa(port)
	}
	if path != "" && path != "/" {
		normalized += path
	}
	if u.RawQuery != "" {
		normalized += "?" + u.RawQuery
	}

	return models.Link{
		Original:    original,
		Normalized:  normalized,
		Host:        host,
		Scheme:      scheme,
		Port:        port,
		Path:        path,
		Query:       query,
		HasUserInfo: u.User != nil,
	}, true
}

// trimTrailing strips punctuation that commonly trails a URL in prose
func trimTrailing(s string) string {
	return strings.TrimRight(s, ".,;:!?)]}>'\"")
}
