package risk

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"smishguard/internal/analysis/reputation"
	"smishguard/internal/config"
	"smishguard/internal/domain/models"
	"smishguard/internal/rules"
	"smishguard/pkg/logger"
)

// Signal weights, fixed per code. Verdict breakpoints are configuration;
// these are not.
const (
	weightUserInfo            = 100
	weightReputationMalicious = 80
	weightTyposquat           = 70
	weightHomoglyph           = 60
	weightWrongTLD            = 55
	weightTLDCritical         = 50
	weightKeywordAbuse        = 50
	weightRawIP               = 45
	weightShortenerSuspicious = 40
	weightPunycode            = 35
	weightTLDHigh             = 30
	weightShortener           = 30
	weightRedirectChain       = 25
	weightNonStandardPort     = 25
	weightSuspiciousPath      = 20
	weightTLDMedium           = 15
)

// redirectChainThreshold is the hop count above which a chain is a signal
const redirectChainThreshold = 2

// LinkContext bundles everything known about one link when scoring
type LinkContext struct {
	Link         models.Link
	Profile      models.DomainProfile
	Expanded     *models.ExpandedURL
	FinalProfile *models.DomainProfile
	Reputation   []models.ReputationResult
}

// Engine turns collected signals into a deterministic, explainable verdict
type Engine struct {
	cfg    config.AnalysisConfig
	logger *logger.Logger
}

// NewEngine creates an Engine
func NewEngine(cfg config.AnalysisConfig, log *logger.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: log.WithComponent("risk-engine"),
	}
}

// Evaluate scores all links plus sender signals and maps the total to a
// verdict level. An ALLOW override short-circuits to a safe verdict unless
// a critical signal is present; a BLOCK override raises the verdict floor.
func (e *Engine) Evaluate(messageID uuid.UUID, links []LinkContext, senderSignals []models.Signal, override rules.Action) (models.Verdict, []models.Signal) {
	var signals []models.Signal
	for _, lc := range links {
		signals = append(signals, e.linkSignals(lc)...)
	}
	signals = append(signals, senderSignals...)

	hasCritical := false
	score := 0
	for _, sig := range signals {
		score += sig.Weight
		if sig.Critical {
			hasCritical = true
		}
	}

	if override == rules.ActionAllow && !hasCritical {
		e.logger.Debug().Str("message_id", messageID.String()).Msg("allow override forces safe verdict")
		return models.Verdict{
			MessageID:  messageID,
			Level:      models.VerdictSafe,
			Score:      0,
			Reasons:    []models.Reason{},
			AnalyzedAt: time.Now(),
		}, nil
	}

	caution, danger := e.cfg.Thresholds()
	level := models.VerdictSafe
	switch {
	case hasCritical || score >= danger:
		level = models.VerdictDangerous
	case score >= caution:
		level = models.VerdictCaution
	}

	if override == rules.ActionBlock && level == models.VerdictSafe {
		level = models.VerdictCaution
	}

	return models.Verdict{
		MessageID:  messageID,
		Level:      level,
		Score:      score,
		Reasons:    e.topReasons(signals),
		AnalyzedAt: time.Now(),
	}, signals
}

// linkSignals runs every detection rule over one link's context
func (e *Engine) linkSignals(lc LinkContext) []models.Signal {
	prof := lc.Profile
	var signals []models.Signal

	add := func(sig models.Signal) { signals = append(signals, sig) }

	if prof.HasUserInfo {
		add(models.Signal{
			Code:     models.SignalUserInfoInURL,
			Weight:   weightUserInfo,
			Critical: true,
			Meta:     models.SignalMeta{Host: prof.OriginalHost},
		})
	}

	if worst := reputation.WorstResult(lc.Reputation); worst != nil {
		add(models.Signal{
			Code:   models.SignalReputationMalicious,
			Weight: weightReputationMalicious,
			Meta: models.SignalMeta{
				Host:       prof.OriginalHost,
				Source:     worst.Source,
				ThreatType: worst.ThreatType,
			},
		})
	}

	if imp := prof.BrandImpersonation; imp != nil {
		code, weight := models.SignalBrandTyposquat, weightTyposquat
		switch imp.Type {
		case models.ImpersonationWrongTLD:
			code, weight = models.SignalBrandWrongTLD, weightWrongTLD
		case models.ImpersonationKeywordAbuse:
			code, weight = models.SignalBrandKeywordAbuse, weightKeywordAbuse
		}
		add(models.Signal{
			Code:   code,
			Weight: weight,
			Meta: models.SignalMeta{
				Brand:           imp.Brand,
				AttemptedDomain: imp.AttemptedDomain,
				OfficialDomain:  imp.OfficialDomain,
			},
		})
	}

	if prof.IsHomoglyphSuspect {
		add(models.Signal{
			Code:   models.SignalHomoglyphHost,
			Weight: weightHomoglyph,
			Meta:   models.SignalMeta{Host: prof.OriginalHost, OfficialDomain: prof.HomoglyphTarget},
		})
	}

	if weight := tldWeight(prof.TLDRiskLevel); weight > 0 {
		add(models.Signal{
			Code:   models.SignalTLDRisk,
			Weight: weight,
			Meta: models.SignalMeta{
				Host:      prof.OriginalHost,
				TLD:       prof.RegisteredDomain,
				RiskLevel: string(prof.TLDRiskLevel),
			},
		})
	}

	if prof.IsRawIP {
		add(models.Signal{
			Code:   models.SignalRawIPHost,
			Weight: weightRawIP,
			Meta:   models.SignalMeta{Host: prof.OriginalHost},
		})
	}

	if prof.IsPunycode {
		add(models.Signal{
			Code:   models.SignalPunycodeHost,
			Weight: weightPunycode,
			Meta:   models.SignalMeta{Host: prof.OriginalHost},
		})
	}

	if prof.IsShortener {
		add(models.Signal{
			Code:   models.SignalLinkShortener,
			Weight: weightShortener,
			Meta:   models.SignalMeta{Host: prof.OriginalHost, FinalHost: finalHost(lc)},
		})
		if suspiciousTarget(lc.FinalProfile) {
			add(models.Signal{
				Code:   models.SignalShortenerSuspicious,
				Weight: weightShortenerSuspicious,
				Meta:   models.SignalMeta{Host: prof.OriginalHost, FinalHost: finalHost(lc)},
			})
		}
	}

	if lc.Expanded != nil && lc.Expanded.RedirectCount > redirectChainThreshold {
		add(models.Signal{
			Code:   models.SignalRedirectChain,
			Weight: weightRedirectChain,
			Meta:   models.SignalMeta{Host: prof.OriginalHost, Count: lc.Expanded.RedirectCount},
		})
	}

	if prof.Port != 0 {
		add(models.Signal{
			Code:   models.SignalNonStandardPort,
			Weight: weightNonStandardPort,
			Meta:   models.SignalMeta{Host: prof.OriginalHost, Port: prof.Port},
		})
	}

	if len(prof.SuspiciousPaths) > 0 {
		add(models.Signal{
			Code:   models.SignalSuspiciousPath,
			Weight: weightSuspiciousPath,
			Meta: models.SignalMeta{
				Host:     prof.OriginalHost,
				Keywords: prof.SuspiciousPaths,
				Count:    len(prof.SuspiciousPaths),
			},
		})
	}

	return signals
}

// topReasons renders the highest-weight signals, descending
func (e *Engine) topReasons(signals []models.Signal) []models.Reason {
	n := e.cfg.TopReasons
	if n <= 0 {
		n = 3
	}

	ordered := make([]models.Signal, len(signals))
	copy(ordered, signals)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Weight > ordered[j].Weight })

	if len(ordered) > n {
		ordered = ordered[:n]
	}

	reasons := make([]models.Reason, 0, len(ordered))
	for _, sig := range ordered {
		reasons = append(reasons, Render(sig))
	}
	return reasons
}

func tldWeight(level models.TLDRiskLevel) int {
	switch level {
	case models.TLDRiskCritical:
		return weightTLDCritical
	case models.TLDRiskHigh:
		return weightTLDHigh
	case models.TLDRiskMedium:
		return weightTLDMedium
	default:
		return 0
	}
}

// suspiciousTarget reports whether a shortener's final destination profile
// itself looks risky.
func suspiciousTarget(final *models.DomainProfile) bool {
	if final == nil {
		return false
	}
	return final.TLDRiskLevel == models.TLDRiskHigh ||
		final.TLDRiskLevel == models.TLDRiskCritical ||
		final.IsRawIP ||
		final.BrandImpersonation != nil
}

func finalHost(lc LinkContext) string {
	if lc.FinalProfile != nil {
		return lc.FinalProfile.OriginalHost
	}
	return ""
}
