package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smishguard/internal/domain/models"
	"smishguard/pkg/logger"
)

const (
	urlhausSlug   = "urlhaus"
	urlhausAPIURL = "https://urlhaus-api.abuse.ch/v1"
)

// URLhausSource checks URLs against the abuse.ch URLhaus lookup API
type URLhausSource struct {
	*BaseSource
	client *http.Client
	logger *logger.Logger
	apiURL string
}

// NewURLhausSource creates a new URLhaus source
func NewURLhausSource(log *logger.Logger) *URLhausSource {
	return &URLhausSource{
		BaseSource: NewBaseSource(urlhausSlug, "URLhaus"),
		client:     &http.Client{},
		logger:     log.WithComponent("urlhaus"),
		apiURL:     urlhausAPIURL,
	}
}

// Configure configures the source with the given config
func (s *URLhausSource) Configure(cfg SourceConfig) error {
	if err := s.BaseSource.Configure(cfg); err != nil {
		return err
	}
	if cfg.APIURL != "" {
		s.apiURL = cfg.APIURL
	}
	return nil
}

type urlhausResponse struct {
	QueryStatus string   `json:"query_status"`
	URLStatus   string   `json:"url_status"`
	Threat      string   `json:"threat"`
	Tags        []string `json:"tags"`
}

// Lookup queries the URLhaus url endpoint for target
func (s *URLhausSource) Lookup(ctx context.Context, target string) (*models.ReputationResult, error) {
	form := url.Values{"url": {target}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/url/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query urlhaus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("urlhaus API returned status %d", resp.StatusCode)
	}

	var response urlhausResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result := &models.ReputationResult{
		URL:       target,
		Source:    urlhausSlug,
		Timestamp: time.Now(),
	}

	switch response.QueryStatus {
	case "ok":
		result.IsMalicious = response.URLStatus == "online" || response.URLStatus == "offline"
		result.ThreatType = response.Threat
		if len(response.Tags) > 0 {
			result.Metadata = map[string]string{"tags": strings.Join(response.Tags, ",")}
		}
	case "no_results":
		// Known-clean as far as this source can tell.
	default:
		return nil, fmt.Errorf("urlhaus query status %q", response.QueryStatus)
	}

	return result, nil
}
