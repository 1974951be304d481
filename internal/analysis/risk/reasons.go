package risk

import (
	"fmt"
	"strings"

	"smishguard/internal/domain/models"
)

// Render produces the user-facing reason for a signal. Templates are fixed
// per code so the same inputs always yield the same wording.
func Render(sig models.Signal) models.Reason {
	m := sig.Meta
	var label, detail string

	switch sig.Code {
	case models.SignalUserInfoInURL:
		label = "Credentials embedded in link"
		detail = fmt.Sprintf("The link to %s hides its real destination behind an @ sign, a technique used to disguise phishing sites.", m.Host)
	case models.SignalReputationMalicious:
		label = "Known malicious link"
		detail = fmt.Sprintf("The link to %s is flagged as %s by %s.", m.Host, threatLabel(m.ThreatType), m.Source)
	case models.SignalSenderMismatch:
		label = fmt.Sprintf("Sender does not match %s", m.Brand)
		detail = fmt.Sprintf("The message claims to be from %s but was sent by %q, which is not a registered %s sender.", m.Brand, m.SenderID, m.Brand)
	case models.SignalBrandTyposquat:
		label = fmt.Sprintf("Link imitates %s", m.Brand)
		detail = fmt.Sprintf("The domain %s is a near-miss spelling of the official %s domain %s.", m.AttemptedDomain, m.Brand, m.OfficialDomain)
	case models.SignalBrandWrongTLD:
		label = fmt.Sprintf("Wrong domain for %s", m.Brand)
		detail = fmt.Sprintf("The domain %s uses the %s name under a different ending than the official %s.", m.AttemptedDomain, m.Brand, m.OfficialDomain)
	case models.SignalBrandKeywordAbuse:
		label = fmt.Sprintf("Link name abuses %s", m.Brand)
		detail = fmt.Sprintf("The domain %s embeds the %s name to appear official; the real domain is %s.", m.AttemptedDomain, m.Brand, m.OfficialDomain)
	case models.SignalHomoglyphHost:
		label = "Look-alike characters in link"
		detail = fmt.Sprintf("The address %s uses characters that visually imitate %s.", m.Host, m.OfficialDomain)
	case models.SignalTLDRisk:
		label = "Risky domain ending"
		detail = fmt.Sprintf("The domain %s uses an ending with a %s rate of abuse in phishing campaigns.", m.TLD, m.RiskLevel)
	case models.SignalRawIPHost:
		label = "Link points to a raw IP address"
		detail = fmt.Sprintf("The link goes directly to the address %s instead of a named website.", m.Host)
	case models.SignalPunycodeHost:
		label = "Encoded international domain"
		detail = fmt.Sprintf("The address %s uses encoded international characters that can disguise its real name.", m.Host)
	case models.SignalLinkShortener:
		label = "Shortened link"
		if m.FinalHost != "" {
			detail = fmt.Sprintf("The link goes through the shortener %s and ultimately leads to %s.", m.Host, m.FinalHost)
		} else {
			detail = fmt.Sprintf("The link goes through the shortener %s, hiding its final destination.", m.Host)
		}
	case models.SignalShortenerSuspicious:
		label = "Shortened link hides a risky site"
		detail = fmt.Sprintf("The shortener %s redirects to %s, which shows independent risk indicators.", m.Host, m.FinalHost)
	case models.SignalRedirectChain:
		label = "Long redirect chain"
		detail = fmt.Sprintf("The link to %s bounces through %d redirects before reaching its destination.", m.Host, m.Count)
	case models.SignalNonStandardPort:
		label = "Unusual network port"
		detail = fmt.Sprintf("The link to %s uses port %d instead of the standard web ports.", m.Host, m.Port)
	case models.SignalSuspiciousPath:
		label = "Phishing-style link wording"
		detail = fmt.Sprintf("The link to %s contains wording commonly used in phishing pages: %s.", m.Host, strings.Join(m.Keywords, ", "))
	default:
		label = "Risk indicator"
		detail = fmt.Sprintf("An indicator of type %s was detected.", sig.Code)
	}

	return models.Reason{
		Code:   sig.Code,
		Label:  label,
		Detail: detail,
	}
}

func threatLabel(threatType string) string {
	switch strings.ToUpper(threatType) {
	case "SOCIAL_ENGINEERING", "PHISHING":
		return "a phishing site"
	case "MALWARE":
		return "malware"
	case "UNWANTED_SOFTWARE":
		return "unwanted software"
	default:
		return "malicious"
	}
}
