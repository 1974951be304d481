package resolve

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"smishguard/internal/config"
	"smishguard/internal/domain/models"
	"smishguard/internal/infrastructure/cache"
	"smishguard/pkg/logger"
)

// Resolver follows HTTP redirects manually so every hop is recorded.
// Resolution is best-effort: exceeding the hop cap or the wall-clock
// timeout truncates the chain at the last known URL instead of failing.
type Resolver struct {
	client       *http.Client
	maxRedirects int
	timeout      time.Duration
	store        cache.Store
	cacheTTL     time.Duration
	logger       *logger.Logger
}

// New creates a Resolver. The store may be nil to disable caching.
func New(cfg config.AnalysisConfig, store cache.Store, log *logger.Logger) *Resolver {
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 4
	}
	timeout := cfg.ResolveTimeout
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &Resolver{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		maxRedirects: maxRedirects,
		timeout:      timeout,
		store:        store,
		cacheTTL:     cfg.ResolveCacheTTL,
		logger:       log.WithComponent("resolver"),
	}
}

// Resolve expands target by following redirects up to the hop cap. An error
// is returned only when nothing at all could be learned about the target;
// a truncated chain is a successful partial resolution.
func (r *Resolver) Resolve(ctx context.Context, target string) (models.ExpandedURL, error) {
	if r.store != nil {
		var cached models.ExpandedURL
		if err := r.store.GetJSON(ctx, cache.KeyResolvePrefix+target, &cached); err == nil {
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	expanded := models.ExpandedURL{
		OriginalURL: target,
		FinalURL:    target,
		Timestamp:   time.Now(),
	}

	current := target
	seen := make(map[string]struct{})

	for hop := 0; hop < r.maxRedirects; hop++ {
		if _, ok := seen[current]; ok {
			// Redirect loop; the last URL before the repeat stands.
			break
		}
		seen[current] = struct{}{}

		loc, err := r.fetchLocation(ctx, current)
		if err != nil {
			if hop == 0 {
				return models.ExpandedURL{}, fmt.Errorf("resolve %s: %w", target, err)
			}
			// Partial chains are still useful to the profiler.
			r.logger.Debug().Err(err).Str("url", current).Int("hop", hop).Msg("redirect chain truncated")
			break
		}
		if loc == "" {
			break
		}

		expanded.RedirectChain = append(expanded.RedirectChain, loc)
		expanded.RedirectCount++
		expanded.FinalURL = loc
		current = loc
	}

	if r.store != nil {
		if err := r.store.SetJSON(ctx, cache.KeyResolvePrefix+target, expanded, r.cacheTTL); err != nil {
			r.logger.Debug().Err(err).Msg("failed to cache resolution")
		}
	}

	return expanded, nil
}

// fetchLocation performs one hop and returns the absolute redirect target,
// or "" when the response is final. HEAD is tried first; servers that
// refuse it get a GET.
func (r *Resolver) fetchLocation(ctx context.Context, target string) (string, error) {
	resp, err := r.do(ctx, http.MethodHead, target)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		resp.Body.Close()
		resp, err = r.do(ctx, http.MethodGet, target)
		if err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return "", nil
	}

	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", nil
	}

	next, err := url.Parse(loc)
	if err != nil {
		return "", nil
	}
	return resp.Request.URL.ResolveReference(next).String(), nil
}

func (r *Resolver) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	return r.client.Do(req)
}
