package models

import "time"

// ReputationResult is one source's verdict for one URL. Absence of a result
// means the source could not answer, not that the URL is clean.
type ReputationResult struct {
	URL         string            `json:"url"`
	Source      string            `json:"source"`
	IsMalicious bool              `json:"is_malicious"`
	ThreatType  string            `json:"threat_type,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
