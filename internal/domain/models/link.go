package models

import "time"

// Link is a single URL occurrence extracted from a message body.
// Immutable once extracted; deduplicated by Normalized form.
type Link struct {
	Original    string            `json:"original"`
	Normalized  string            `json:"normalized"`
	Host        string            `json:"host"`
	Scheme      string            `json:"scheme"`
	Port        int               `json:"port,omitempty"`
	Path        string            `json:"path,omitempty"`
	Query       map[string]string `json:"query,omitempty"`
	HasUserInfo bool              `json:"has_user_info"`
}

// ExpandedURL records the outcome of following a link's redirect chain.
type ExpandedURL struct {
	OriginalURL   string    `json:"original_url"`
	FinalURL      string    `json:"final_url"`
	RedirectChain []string  `json:"redirect_chain,omitempty"`
	RedirectCount int       `json:"redirect_count"`
	Timestamp     time.Time `json:"timestamp"`
}

// TLDRiskLevel classifies how heavily a TLD is abused in the wild
type TLDRiskLevel string

const (
	TLDRiskNone     TLDRiskLevel = "none"
	TLDRiskMedium   TLDRiskLevel = "medium"
	TLDRiskHigh     TLDRiskLevel = "high"
	TLDRiskCritical TLDRiskLevel = "critical"
)

// ImpersonationType categorizes how a domain imitates a brand
type ImpersonationType string

const (
	ImpersonationTyposquat    ImpersonationType = "typosquat"
	ImpersonationWrongTLD     ImpersonationType = "wrong_tld"
	ImpersonationKeywordAbuse ImpersonationType = "keyword_abuse"
)

// BrandImpersonation describes a detected brand-imitation attempt
type BrandImpersonation struct {
	Brand           string            `json:"brand"`
	AttemptedDomain string            `json:"attempted_domain"`
	OfficialDomain  string            `json:"official_domain"`
	Type            ImpersonationType `json:"type"`
}

// DomainProfile holds every locally computable risk attribute of one Link.
// Exactly one RegisteredDomain, possibly equal to OriginalHost when no
// suffix rule applies or the host is an IP literal.
type DomainProfile struct {
	RegisteredDomain   string              `json:"registered_domain"`
	OriginalHost       string              `json:"original_host"`
	Scheme             string              `json:"scheme"`
	Port               int                 `json:"port,omitempty"`
	HasUserInfo        bool                `json:"has_user_info"`
	IsPunycode         bool                `json:"is_punycode"`
	IsRawIP            bool                `json:"is_raw_ip"`
	IsHomoglyphSuspect bool                `json:"is_homoglyph_suspect"`
	HomoglyphTarget    string              `json:"homoglyph_target,omitempty"`
	SuspiciousPaths    []string            `json:"suspicious_paths,omitempty"`
	BrandImpersonation *BrandImpersonation `json:"brand_impersonation,omitempty"`
	TLDRiskLevel       TLDRiskLevel        `json:"tld_risk_level"`
	IsShortener        bool                `json:"is_shortener"`
}
