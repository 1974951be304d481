package analysis

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"smishguard/internal/analysis/extract"
	"smishguard/internal/analysis/profile"
	"smishguard/internal/analysis/reputation"
	"smishguard/internal/analysis/resolve"
	"smishguard/internal/analysis/risk"
	"smishguard/internal/analysis/sender"
	"smishguard/internal/config"
	"smishguard/internal/domain/models"
	"smishguard/internal/rules"
	"smishguard/pkg/logger"
)

// Pipeline wires the analysis stages together. Stages are stateless with
// respect to each other; only the caches and the pack store carry state.
type Pipeline struct {
	extractor     *extract.Extractor
	resolver      *resolve.Resolver
	profiler      *profile.Profiler
	sender        *sender.Detector
	reputation    *reputation.Aggregator
	engine        *risk.Engine
	overrides     *rules.Store
	cfg           config.AnalysisConfig
	defaultRegion string
	logger        *logger.Logger
}

// Deps carries the pipeline's collaborators
type Deps struct {
	Extractor     *extract.Extractor
	Resolver      *resolve.Resolver
	Profiler      *profile.Profiler
	Sender        *sender.Detector
	Reputation    *reputation.Aggregator
	Engine        *risk.Engine
	Overrides     *rules.Store
	DefaultRegion string
}

// NewPipeline creates a Pipeline from its dependencies
func NewPipeline(cfg config.AnalysisConfig, deps Deps, log *logger.Logger) *Pipeline {
	return &Pipeline{
		extractor:     deps.Extractor,
		resolver:      deps.Resolver,
		profiler:      deps.Profiler,
		sender:        deps.Sender,
		reputation:    deps.Reputation,
		engine:        deps.Engine,
		overrides:     deps.Overrides,
		cfg:           cfg,
		defaultRegion: deps.DefaultRegion,
		logger:        log.WithComponent("pipeline"),
	}
}

// Analyze runs the full pipeline over one message. It never returns an
// error: an internal failure fails open to a safe verdict so a scoring bug
// cannot block message delivery.
func (p *Pipeline) Analyze(ctx context.Context, msg models.Message) (result models.AnalysisResult) {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}

	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error().
				Str("message_id", msg.ID.String()).
				Interface("panic", rec).
				Msg("analysis panicked, failing open")
			result = safeResult(msg.ID)
		}
	}()

	start := time.Now()
	links := p.extractor.Extract(msg.Body)
	if len(links) == 0 {
		return safeResult(msg.ID)
	}

	contexts := p.analyzeLinks(ctx, links)

	profiles := make([]models.DomainProfile, 0, len(contexts))
	expanded := make(map[string]models.ExpandedURL)
	domains := make([]string, 0, len(contexts))
	for _, lc := range contexts {
		profiles = append(profiles, lc.Profile)
		domains = append(domains, lc.Profile.RegisteredDomain)
		if lc.Expanded != nil {
			expanded[lc.Link.Normalized] = *lc.Expanded
		}
		if lc.FinalProfile != nil {
			domains = append(domains, lc.FinalProfile.RegisteredDomain)
		}
	}

	region := msg.Region
	if region == "" {
		region = p.defaultRegion
	}
	senderSignals := p.sender.Detect(region, msg.Sender, msg.Body, profiles)

	override := p.overrides.Check(domains, msg.Sender)

	verdict, signals := p.engine.Evaluate(msg.ID, contexts, senderSignals, override)

	p.logger.Info().
		Str("message_id", msg.ID.String()).
		Str("level", string(verdict.Level)).
		Int("score", verdict.Score).
		Int("links", len(links)).
		Dur("took", time.Since(start)).
		Msg("message analyzed")

	return models.AnalysisResult{
		Verdict:  verdict,
		Links:    links,
		Profiles: profiles,
		Expanded: expanded,
		Signals:  signals,
	}
}

// analyzeLinks resolves, profiles and reputation-checks every link, at most
// MaxConcurrentLinks at a time.
func (p *Pipeline) analyzeLinks(ctx context.Context, links []models.Link) []risk.LinkContext {
	limit := p.cfg.MaxConcurrentLinks
	if limit <= 0 {
		limit = 4
	}
	sem := make(chan struct{}, limit)

	contexts := make([]risk.LinkContext, len(links))
	var wg sync.WaitGroup
	for i, link := range links {
		wg.Add(1)
		go func(i int, link models.Link) {
			defer wg.Done()
			// recover here as well: a panic on a spawned goroutine would
			// bypass the recover in Analyze and take the process down.
			defer func() {
				if rec := recover(); rec != nil {
					p.logger.Error().
						Str("url", link.Normalized).
						Interface("panic", rec).
						Msg("link analysis panicked, degrading link")
					contexts[i] = risk.LinkContext{Link: link}
				}
			}()
			sem <- struct{}{}
			defer func() { <-sem }()
			contexts[i] = p.analyzeLink(ctx, link)
		}(i, link)
	}
	wg.Wait()
	return contexts
}

func (p *Pipeline) analyzeLink(ctx context.Context, link models.Link) risk.LinkContext {
	lc := risk.LinkContext{
		Link:    link,
		Profile: p.profiler.Profile(link),
	}

	if link.Scheme == "http" || link.Scheme == "https" {
		exp, err := p.resolver.Resolve(ctx, link.Normalized)
		if err != nil {
			p.logger.Debug().Str("url", link.Normalized).Err(err).Msg("resolution failed")
		} else {
			lc.Expanded = &exp
			if final, ok := parseFinal(exp.FinalURL); ok && final.Host != link.Host {
				fp := p.profiler.Profile(final)
				lc.FinalProfile = &fp
			}
		}
	}

	target := link.Normalized
	if lc.Expanded != nil && lc.Expanded.FinalURL != "" {
		target = lc.Expanded.FinalURL
	}
	lc.Reputation = p.reputation.Check(ctx, target)

	return lc
}

// parseFinal builds a minimal Link from a resolved destination URL
func parseFinal(raw string) (models.Link, bool) {
	if raw == "" {
		return models.Link{}, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return models.Link{}, false
	}
	link := models.Link{
		Original:    raw,
		Normalized:  raw,
		Host:        strings.ToLower(u.Hostname()),
		Scheme:      strings.ToLower(u.Scheme),
		Path:        u.Path,
		HasUserInfo: u.User != nil,
	}
	if ps := u.Port(); ps != "" {
		if port, err := strconv.Atoi(ps); err == nil {
			link.Port = port
		}
	}
	switch {
	case link.Scheme == "http" && link.Port == 80,
		link.Scheme == "https" && link.Port == 443:
		link.Port = 0
	}
	return link, true
}

func safeResult(id uuid.UUID) models.AnalysisResult {
	return models.AnalysisResult{
		Verdict: models.Verdict{
			MessageID:  id,
			Level:      models.VerdictSafe,
			Score:      0,
			Reasons:    []models.Reason{},
			AnalyzedAt: time.Now(),
		},
	}
}
