package reputation

import (
	"context"
	"sort"
	"sync"
	"time"

	"smishguard/internal/domain/models"
	"smishguard/internal/infrastructure/cache"
	"smishguard/pkg/logger"
)

// Aggregator fans a URL out to every enabled source concurrently and
// merges their verdicts. A source that times out or errors contributes no
// result; absence is never treated as "clean".
type Aggregator struct {
	sources []Source
	store   cache.Store
	ttl     time.Duration
	logger  *logger.Logger
}

// NewAggregator creates an Aggregator. The store may be nil to disable
// result caching.
func NewAggregator(store cache.Store, ttl time.Duration, log *logger.Logger) *Aggregator {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &Aggregator{
		store:  store,
		ttl:    ttl,
		logger: log.WithComponent("reputation"),
	}
}

// Register adds a source to the aggregator
func (a *Aggregator) Register(source Source) {
	a.sources = append(a.sources, source)
	a.logger.Info().Str("source", source.Slug()).Msg("registered reputation source")
}

// Sources returns the registered sources
func (a *Aggregator) Sources() []Source {
	return a.sources
}

// Check looks up url across all enabled sources. Never returns an error:
// the worst outcome is an empty result set.
func (a *Aggregator) Check(ctx context.Context, url string) []models.ReputationResult {
	if a.store != nil {
		var cached []models.ReputationResult
		if err := a.store.GetJSON(ctx, cache.KeyReputationPrefix+url, &cached); err == nil {
			return cached
		}
	}

	type outcome struct {
		result *models.ReputationResult
		slug   string
		err    error
	}

	enabled := make([]Source, 0, len(a.sources))
	for _, src := range a.sources {
		if src.IsEnabled() {
			enabled = append(enabled, src)
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	outcomes := make(chan outcome, len(enabled))
	var wg sync.WaitGroup
	for _, src := range enabled {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error().Str("source", src.Slug()).Any("panic", r).Msg("reputation source panicked")
					outcomes <- outcome{slug: src.Slug()}
				}
			}()

			timeout := 2 * time.Second
			if bs, ok := src.(interface{ Config() SourceConfig }); ok && bs.Config().Timeout > 0 {
				timeout = bs.Config().Timeout
			}
			srcCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			result, err := src.Lookup(srcCtx, url)
			outcomes <- outcome{result: result, slug: src.Slug(), err: err}
		}(src)
	}
	wg.Wait()
	close(outcomes)

	var results []models.ReputationResult
	for o := range outcomes {
		if o.err != nil {
			a.logger.Debug().Err(o.err).Str("source", o.slug).Msg("reputation source unavailable")
			continue
		}
		if o.result != nil {
			results = append(results, *o.result)
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Source < results[j].Source })

	if a.store != nil && len(results) > 0 {
		if err := a.store.SetJSON(ctx, cache.KeyReputationPrefix+url, results, a.ttl); err != nil {
			a.logger.Debug().Err(err).Msg("failed to cache reputation results")
		}
	}

	return results
}

// AnyMalicious reports whether any source flagged the URL
func AnyMalicious(results []models.ReputationResult) bool {
	for _, r := range results {
		if r.IsMalicious {
			return true
		}
	}
	return false
}

// WorstResult returns the single most specific non-clean result, preferring
// results that name a threat type. Nil when every source reported clean.
func WorstResult(results []models.ReputationResult) *models.ReputationResult {
	var worst *models.ReputationResult
	for i := range results {
		r := &results[i]
		if !r.IsMalicious {
			continue
		}
		if worst == nil || (worst.ThreatType == "" && r.ThreatType != "") {
			worst = r
		}
	}
	return worst
}
