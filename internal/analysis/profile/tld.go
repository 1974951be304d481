package profile

import (
	"strings"

	"smishguard/internal/domain/models"
)

// tldRiskTiers maps TLDs to abuse tiers. Critical: free registrations with
// heavy abuse history. High: cheap bulk-registration TLDs. Medium:
// occasionally abused. Everything else scores none.
var tldRiskTiers = map[string]models.TLDRiskLevel{
	"tk": models.TLDRiskCritical,
	"ml": models.TLDRiskCritical,
	"ga": models.TLDRiskCritical,
	"cf": models.TLDRiskCritical,
	"gq": models.TLDRiskCritical,

	"xyz":     models.TLDRiskHigh,
	"top":     models.TLDRiskHigh,
	"club":    models.TLDRiskHigh,
	"work":    models.TLDRiskHigh,
	"click":   models.TLDRiskHigh,
	"link":    models.TLDRiskHigh,
	"buzz":    models.TLDRiskHigh,
	"vip":     models.TLDRiskHigh,
	"monster": models.TLDRiskHigh,
	"loan":    models.TLDRiskHigh,

	"online": models.TLDRiskMedium,
	"site":   models.TLDRiskMedium,
	"shop":   models.TLDRiskMedium,
	"live":   models.TLDRiskMedium,
	"icu":    models.TLDRiskMedium,
	"cam":    models.TLDRiskMedium,
}

// TLDRisk returns the risk tier for a registrable domain's TLD. Only the
// single applicable tier is returned, never a cumulative score.
func TLDRisk(registeredDomain string) models.TLDRiskLevel {
	i := strings.LastIndex(registeredDomain, ".")
	if i < 0 {
		return models.TLDRiskNone
	}
	if level, ok := tldRiskTiers[registeredDomain[i+1:]]; ok {
		return level
	}
	return models.TLDRiskNone
}

// linkShorteners is the set of known URL-shortener hosts
var linkShorteners = map[string]bool{
	"bit.ly":      true,
	"tinyurl.com": true,
	"t.co":        true,
	"goo.gl":      true,
	"ow.ly":       true,
	"is.gd":       true,
	"buff.ly":     true,
	"j.mp":        true,
	"rb.gy":       true,
	"cutt.ly":     true,
	"tiny.cc":     true,
	"shorturl.at": true,
}

// IsShortener reports whether host is a recognized link shortener
func IsShortener(host string) bool {
	return linkShorteners[strings.ToLower(host)]
}
