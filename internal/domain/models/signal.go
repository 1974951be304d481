package models

// SignalCode identifies a detector category
type SignalCode string

const (
	SignalUserInfoInURL       SignalCode = "USERINFO_IN_URL"
	SignalReputationMalicious SignalCode = "REPUTATION_MALICIOUS"
	SignalSenderMismatch      SignalCode = "SENDER_MISMATCH"
	SignalBrandTyposquat      SignalCode = "BRAND_TYPOSQUAT"
	SignalBrandWrongTLD       SignalCode = "BRAND_WRONG_TLD"
	SignalBrandKeywordAbuse   SignalCode = "BRAND_KEYWORD_ABUSE"
	SignalHomoglyphHost       SignalCode = "HOMOGLYPH_HOST"
	SignalTLDRisk             SignalCode = "TLD_RISK"
	SignalRawIPHost           SignalCode = "RAW_IP_HOST"
	SignalPunycodeHost        SignalCode = "PUNYCODE_HOST"
	SignalLinkShortener       SignalCode = "LINK_SHORTENER"
	SignalShortenerSuspicious SignalCode = "SHORTENER_SUSPICIOUS_TARGET"
	SignalRedirectChain       SignalCode = "REDIRECT_CHAIN"
	SignalNonStandardPort     SignalCode = "NONSTANDARD_PORT"
	SignalSuspiciousPath      SignalCode = "SUSPICIOUS_PATH"
)

// SignalMeta carries the typed payload fields used to render a signal into
// a human-readable reason. Only the fields relevant to the code are set.
type SignalMeta struct {
	Host            string    `json:"host,omitempty"`
	Brand           string    `json:"brand,omitempty"`
	BrandType       BrandType `json:"brand_type,omitempty"`
	SenderID        string    `json:"sender_id,omitempty"`
	OfficialDomain  string    `json:"official_domain,omitempty"`
	AttemptedDomain string    `json:"attempted_domain,omitempty"`
	Keywords        []string  `json:"keywords,omitempty"`
	Port            int       `json:"port,omitempty"`
	Count           int       `json:"count,omitempty"`
	TLD             string    `json:"tld,omitempty"`
	RiskLevel       string    `json:"risk_level,omitempty"`
	Source          string    `json:"source,omitempty"`
	ThreatType      string    `json:"threat_type,omitempty"`
	FinalHost       string    `json:"final_host,omitempty"`
}

// Signal is a single detected risk indicator with its fixed weight.
// Ephemeral: generated fresh per analysis, never persisted on its own.
type Signal struct {
	Code     SignalCode `json:"code"`
	Weight   int        `json:"weight"`
	Critical bool       `json:"critical,omitempty"`
	Meta     SignalMeta `json:"meta,omitempty"`
}
