package profile

import (
	"net"
	"strings"

	"smishguard/internal/domain/models"
	"smishguard/pkg/logger"
)

// suspiciousPathKeywords is the fixed keyword set scanned against path
// segments. Matches are recorded individually, not just counted.
var suspiciousPathKeywords = []string{
	"login", "signin", "verify", "verification", "reset", "password",
	"otp", "prize", "winner", "win", "claim", "refund", "kyc",
	"unlock", "suspend", "update-account", "confirm", "secure",
	"wallet", "bonus", "gift",
}

// Profiler computes a DomainProfile for a Link. Every step is a pure
// function of its inputs; no network access happens here.
type Profiler struct {
	suffixes  *SuffixResolver
	brands    *BrandTable
	homoglyph *HomoglyphDetector
	logger    *logger.Logger
}

// New creates a Profiler over the given rule tables
func New(suffixes *SuffixResolver, brands *BrandTable, log *logger.Logger) *Profiler {
	return &Profiler{
		suffixes:  suffixes,
		brands:    brands,
		homoglyph: NewHomoglyphDetector(brands.OfficialHosts()),
		logger:    log.WithComponent("profiler"),
	}
}

// NewDefault creates a Profiler over the bundled suffix and brand tables
func NewDefault(log *logger.Logger) *Profiler {
	return New(DefaultSuffixResolver(), DefaultBrandTable(), log)
}

// Profile derives every locally computable risk attribute of link
func (p *Profiler) Profile(link models.Link) models.DomainProfile {
	host := strings.ToLower(link.Host)

	prof := models.DomainProfile{
		OriginalHost: host,
		Scheme:       link.Scheme,
		Port:         link.Port,
		HasUserInfo:  link.HasUserInfo,
	}

	prof.RegisteredDomain = p.suffixes.RegistrableDomain(host)
	prof.IsRawIP = net.ParseIP(strings.Trim(host, "[]")) != nil
	prof.IsPunycode = hasACELabel(host)

	if !prof.IsRawIP {
		if suspect, target := p.homoglyph.Check(prof.RegisteredDomain); suspect {
			prof.IsHomoglyphSuspect = true
			prof.HomoglyphTarget = target
		}
		prof.BrandImpersonation = p.brands.Match(prof.RegisteredDomain)
	}

	prof.SuspiciousPaths = matchPathKeywords(link.Path)
	prof.TLDRiskLevel = TLDRisk(prof.RegisteredDomain)
	prof.IsShortener = IsShortener(host)

	return prof
}

// hasACELabel reports whether any host label carries the punycode prefix
func hasACELabel(host string) bool {
	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "xn--") {
			return true
		}
	}
	return false
}

// matchPathKeywords scans path segments for the suspicious keyword set
func matchPathKeywords(path string) []string {
	if path == "" || path == "/" {
		return nil
	}
	lower := strings.ToLower(path)

	var matched []string
	seen := make(map[string]bool)
	for _, segment := range strings.Split(strings.Trim(lower, "/"), "/") {
		for _, kw := range suspiciousPathKeywords {
			if strings.Contains(segment, kw) && !seen[kw] {
				seen[kw] = true
				matched = append(matched, kw)
			}
		}
	}
	return matched
}
