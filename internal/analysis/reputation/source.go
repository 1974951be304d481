package reputation

import (
	"context"
	"time"

	"smishguard/internal/domain/models"
)

// Source defines the interface for threat-intelligence lookup sources
type Source interface {
	// Slug returns the unique identifier for this source
	Slug() string

	// Name returns the human-readable name of this source
	Name() string

	// IsEnabled returns whether this source is enabled
	IsEnabled() bool

	// Configure configures the source with the given config
	Configure(cfg SourceConfig) error

	// Lookup checks one URL. A nil result with an error means the source
	// could not answer; the caller treats that as absence, not "clean".
	Lookup(ctx context.Context, url string) (*models.ReputationResult, error)
}

// SourceConfig holds configuration for a source
type SourceConfig struct {
	Enabled bool          `json:"enabled"`
	APIURL  string        `json:"api_url,omitempty"`
	FeedURL string        `json:"feed_url,omitempty"`
	APIKey  string        `json:"api_key,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// DefaultSourceConfig returns default source configuration
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Enabled: true,
		Timeout: 2 * time.Second,
	}
}

// BaseSource provides common functionality for sources
type BaseSource struct {
	slug   string
	name   string
	config SourceConfig
}

// NewBaseSource creates a new base source
func NewBaseSource(slug, name string) *BaseSource {
	return &BaseSource{
		slug:   slug,
		name:   name,
		config: DefaultSourceConfig(),
	}
}

// Slug returns the unique identifier for this source
func (s *BaseSource) Slug() string {
	return s.slug
}

// Name returns the human-readable name of this source
func (s *BaseSource) Name() string {
	return s.name
}

// IsEnabled returns whether this source is enabled
func (s *BaseSource) IsEnabled() bool {
	return s.config.Enabled
}

// Configure configures the source
func (s *BaseSource) Configure(cfg SourceConfig) error {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	s.config = cfg
	return nil
}

// Config returns the current configuration
func (s *BaseSource) Config() SourceConfig {
	return s.config
}
