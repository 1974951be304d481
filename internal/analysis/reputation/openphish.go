package reputation

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"smishguard/internal/domain/models"
	"smishguard/pkg/logger"
)

const (
	openPhishSlug    = "openphish"
	openPhishFeedURL = "https://openphish.com/feed.txt"

	feedRefreshInterval = 15 * time.Minute
)

// OpenPhishSource checks URLs against the OpenPhish feed. The feed is
// pulled lazily and kept as an in-memory set so individual lookups never
// touch the network once the feed is warm.
type OpenPhishSource struct {
	*BaseSource
	client  *http.Client
	logger  *logger.Logger
	feedURL string

	mu        sync.RWMutex
	entries   map[string]bool
	fetchedAt time.Time
}

// NewOpenPhishSource creates a new OpenPhish source
func NewOpenPhishSource(log *logger.Logger) *OpenPhishSource {
	return &OpenPhishSource{
		BaseSource: NewBaseSource(openPhishSlug, "OpenPhish"),
		client:     &http.Client{},
		logger:     log.WithComponent("openphish"),
		feedURL:    openPhishFeedURL,
	}
}

// Configure configures the source with the given config
func (s *OpenPhishSource) Configure(cfg SourceConfig) error {
	if err := s.BaseSource.Configure(cfg); err != nil {
		return err
	}
	if cfg.FeedURL != "" {
		s.feedURL = cfg.FeedURL
	}
	return nil
}

// Lookup reports whether url appears in the OpenPhish feed
func (s *OpenPhishSource) Lookup(ctx context.Context, url string) (*models.ReputationResult, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	malicious := s.entries[strings.TrimRight(url, "/")]
	s.mu.RUnlock()

	result := &models.ReputationResult{
		URL:         url,
		Source:      openPhishSlug,
		IsMalicious: malicious,
		Timestamp:   time.Now(),
	}
	if malicious {
		result.ThreatType = "phishing"
	}
	return result, nil
}

// refresh re-downloads the feed when stale
func (s *OpenPhishSource) refresh(ctx context.Context) error {
	s.mu.RLock()
	fresh := time.Since(s.fetchedAt) < feedRefreshInterval && s.entries != nil
	s.mu.RUnlock()
	if fresh {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if time.Since(s.fetchedAt) < feedRefreshInterval && s.entries != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openphish feed returned status %d", resp.StatusCode)
	}

	entries := make(map[string]bool)
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entries[strings.TrimRight(line, "/")] = true
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read feed: %w", err)
	}

	s.entries = entries
	s.fetchedAt = time.Now()
	s.logger.Debug().Int("entries", len(entries)).Msg("refreshed openphish feed")
	return nil
}
