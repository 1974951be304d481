package reputation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"smishguard/internal/domain/models"
	"smishguard/pkg/logger"
)

const (
	safeBrowsingSlug   = "google_safebrowsing"
	safeBrowsingAPIURL = "https://safebrowsing.googleapis.com/v4"
)

// SafeBrowsingSource checks URLs against Google Safe Browsing v4
type SafeBrowsingSource struct {
	*BaseSource
	client *http.Client
	logger *logger.Logger
	apiURL string
	apiKey string
}

// NewSafeBrowsingSource creates a new Google Safe Browsing source
func NewSafeBrowsingSource(log *logger.Logger) *SafeBrowsingSource {
	return &SafeBrowsingSource{
		BaseSource: NewBaseSource(safeBrowsingSlug, "Google Safe Browsing"),
		client:     &http.Client{},
		logger:     log.WithComponent("google-safebrowsing"),
		apiURL:     safeBrowsingAPIURL,
	}
}

// Configure configures the source with the given config
func (s *SafeBrowsingSource) Configure(cfg SourceConfig) error {
	if err := s.BaseSource.Configure(cfg); err != nil {
		return err
	}
	s.apiKey = cfg.APIKey
	if cfg.APIURL != "" {
		s.apiURL = cfg.APIURL
	}
	return nil
}

type sbLookupRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo sbThreatInfo `json:"threatInfo"`
}

type sbThreatInfo struct {
	ThreatTypes      []string      `json:"threatTypes"`
	PlatformTypes    []string      `json:"platformTypes"`
	ThreatEntryTypes []string      `json:"threatEntryTypes"`
	ThreatEntries    []sbThreatURL `json:"threatEntries"`
}

type sbThreatURL struct {
	URL string `json:"url"`
}

type sbLookupResponse struct {
	Matches []struct {
		ThreatType   string      `json:"threatType"`
		PlatformType string      `json:"platformType"`
		Threat       sbThreatURL `json:"threat"`
	} `json:"matches"`
}

// Lookup checks whether url appears in any Safe Browsing threat list
func (s *SafeBrowsingSource) Lookup(ctx context.Context, url string) (*models.ReputationResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("google safe browsing API key not configured")
	}

	reqBody := sbLookupRequest{
		ThreatInfo: sbThreatInfo{
			ThreatTypes:      []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION"},
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []sbThreatURL{{URL: url}},
		},
	}
	reqBody.Client.ClientID = "smishguard"
	reqBody.Client.ClientVersion = "1.0.0"

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/threatMatches:find?key=%s", s.apiURL, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("safe browsing API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response sbLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result := &models.ReputationResult{
		URL:       url,
		Source:    safeBrowsingSlug,
		Timestamp: time.Now(),
	}
	if len(response.Matches) > 0 {
		result.IsMalicious = true
		result.ThreatType = response.Matches[0].ThreatType
		result.Metadata = map[string]string{
			"platform_type": response.Matches[0].PlatformType,
		}
	}
	return result, nil
}
