package models

import (
	"time"

	"github.com/google/uuid"
)

// Message represents a text message to be analyzed
type Message struct {
	ID        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Region    string    `json:"region,omitempty"`
}

// VerdictLevel is the terminal classification of a message
type VerdictLevel string

const (
	VerdictSafe      VerdictLevel = "safe"
	VerdictCaution   VerdictLevel = "caution"
	VerdictDangerous VerdictLevel = "dangerous"
)

// Reason is a rendered, user-facing explanation for one signal
type Reason struct {
	Code   SignalCode `json:"code"`
	Label  string     `json:"label"`
	Detail string     `json:"detail"`
}

// Verdict is the final result of analyzing one message.
// Immutable once computed; recomputed when user trust decisions change.
type Verdict struct {
	MessageID  uuid.UUID    `json:"message_id"`
	Level      VerdictLevel `json:"level"`
	Score      int          `json:"score"`
	Reasons    []Reason     `json:"reasons"`
	AnalyzedAt time.Time    `json:"analyzed_at"`
}

// AnalysisResult carries the verdict plus the intermediate artifacts the
// caller may cache or display alongside it.
type AnalysisResult struct {
	Verdict  Verdict                `json:"verdict"`
	Links    []Link                 `json:"links,omitempty"`
	Profiles []DomainProfile        `json:"profiles,omitempty"`
	Expanded map[string]ExpandedURL `json:"expanded,omitempty"`
	Signals  []Signal               `json:"signals,omitempty"`
}
