package models

import "time"

// BrandType categorizes the organization a sender pattern belongs to
type BrandType string

const (
	BrandTypeBank       BrandType = "bank"
	BrandTypeCarrier    BrandType = "carrier"
	BrandTypeGovernment BrandType = "government"
	BrandTypePayment    BrandType = "payment"
	BrandTypeEcommerce  BrandType = "ecommerce"
	BrandTypeService    BrandType = "service"
	BrandTypeOther      BrandType = "other"
)

// MismatchWeight returns the fixed sender-mismatch signal weight for a
// brand type. Financial and government identities weigh heaviest.
func (t BrandType) MismatchWeight() int {
	switch t {
	case BrandTypeBank:
		return 70
	case BrandTypeGovernment:
		return 65
	case BrandTypePayment:
		return 65
	case BrandTypeCarrier:
		return 50
	case BrandTypeEcommerce:
		return 45
	case BrandTypeService:
		return 40
	default:
		return 35
	}
}

// SenderPackEntry maps one legitimate sender-id pattern to a brand.
// Pattern matching is whole-pattern and case-insensitive.
type SenderPackEntry struct {
	Pattern  string    `json:"pattern"`
	Brand    string    `json:"brand"`
	Type     BrandType `json:"type"`
	Keywords []string  `json:"keywords,omitempty"`
}

// SenderPack is a signed, versioned table of known-legitimate senders for
// one region. Loaded wholesale; a new pack replaces the prior pack for its
// region, never mutates it.
type SenderPack struct {
	Region    string            `json:"region"`
	Version   int               `json:"version"`
	Entries   []SenderPackEntry `json:"entries"`
	Timestamp time.Time         `json:"timestamp"`
	Signature string            `json:"signature"` // hex-encoded Ed25519, detached
}
