package risk_test

import (
	"testing"

	"github.com/google/uuid"

	"smishguard/internal/analysis/risk"
	"smishguard/internal/config"
	"smishguard/internal/domain/models"
	"smishguard/internal/rules"
	"smishguard/pkg/logger"
)

func newEngine(sensitivity config.Sensitivity) *risk.Engine {
	cfg := config.AnalysisConfig{
		Sensitivity:      sensitivity,
		CautionThreshold: 30,
		DangerThreshold:  70,
		TopReasons:       3,
	}
	return risk.NewEngine(cfg, logger.NewDefault())
}

func cleanLink(host string) risk.LinkContext {
	return risk.LinkContext{
		Link:    models.Link{Host: host, Scheme: "https"},
		Profile: models.DomainProfile{OriginalHost: host, RegisteredDomain: host},
	}
}

func TestEvaluateNoSignalsIsSafe(t *testing.T) {
	e := newEngine(config.SensitivityNormal)

	verdict, signals := e.Evaluate(uuid.New(), []risk.LinkContext{cleanLink("example.com")}, nil, rules.ActionNone)
	if verdict.Level != models.VerdictSafe {
		t.Fatalf("expected safe, got %s", verdict.Level)
	}
	if verdict.Score != 0 {
		t.Fatalf("expected score 0, got %d", verdict.Score)
	}
	if len(verdict.Reasons) != 0 {
		t.Fatalf("expected no reasons, got %v", verdict.Reasons)
	}
	if len(signals) != 0 {
		t.Fatalf("expected no signals, got %v", signals)
	}
}

func TestEvaluateCriticalForcesDangerous(t *testing.T) {
	e := newEngine(config.SensitivityNormal)

	lc := cleanLink("203.0.113.7")
	lc.Profile.HasUserInfo = true

	verdict, _ := e.Evaluate(uuid.New(), []risk.LinkContext{lc}, nil, rules.ActionNone)
	if verdict.Level != models.VerdictDangerous {
		t.Fatalf("credentials in URL must force dangerous, got %s", verdict.Level)
	}
	if verdict.Reasons[0].Code != models.SignalUserInfoInURL {
		t.Fatalf("top reason must be the critical signal, got %s", verdict.Reasons[0].Code)
	}
}

func TestEvaluateAllowOverride(t *testing.T) {
	e := newEngine(config.SensitivityNormal)

	lc := cleanLink("bad.xyz")
	lc.Profile.TLDRiskLevel = models.TLDRiskHigh
	lc.Profile.SuspiciousPaths = []string{"login"}

	verdict, _ := e.Evaluate(uuid.New(), []risk.LinkContext{lc}, nil, rules.ActionAllow)
	if verdict.Level != models.VerdictSafe || verdict.Score != 0 {
		t.Fatalf("allow override must force a clean safe verdict, got %s/%d", verdict.Level, verdict.Score)
	}

	// A critical signal pierces the allow override.
	lc.Profile.HasUserInfo = true
	verdict, _ = e.Evaluate(uuid.New(), []risk.LinkContext{lc}, nil, rules.ActionAllow)
	if verdict.Level != models.VerdictDangerous {
		t.Fatalf("critical signal must pierce allow override, got %s", verdict.Level)
	}
}

func TestEvaluateBlockOverrideRaisesFloor(t *testing.T) {
	e := newEngine(config.SensitivityNormal)

	verdict, _ := e.Evaluate(uuid.New(), []risk.LinkContext{cleanLink("example.com")}, nil, rules.ActionBlock)
	if verdict.Level != models.VerdictCaution {
		t.Fatalf("block override must lift safe to caution, got %s", verdict.Level)
	}
}

func TestEvaluateShortenerIsCaution(t *testing.T) {
	e := newEngine(config.SensitivityNormal)

	lc := cleanLink("bit.ly")
	lc.Profile.IsShortener = true
	lc.Expanded = &models.ExpandedURL{
		OriginalURL:   "https://bit.ly/x",
		FinalURL:      "https://example.com/offer",
		RedirectCount: 1,
	}
	final := models.DomainProfile{OriginalHost: "example.com", RegisteredDomain: "example.com"}
	lc.FinalProfile = &final

	verdict, signals := e.Evaluate(uuid.New(), []risk.LinkContext{lc}, nil, rules.ActionNone)
	if verdict.Level != models.VerdictCaution {
		t.Fatalf("a shortener with a clean target is caution, got %s", verdict.Level)
	}
	if len(signals) != 1 || signals[0].Code != models.SignalLinkShortener {
		t.Fatalf("expected only the shortener signal, got %v", signals)
	}
	if verdict.Score != 30 {
		t.Fatalf("expected score 30, got %d", verdict.Score)
	}
}

func TestEvaluateShortenerWithRiskyTarget(t *testing.T) {
	e := newEngine(config.SensitivityNormal)

	lc := cleanLink("bit.ly")
	lc.Profile.IsShortener = true
	lc.Expanded = &models.ExpandedURL{FinalURL: "http://trap.tk/win", RedirectCount: 1}
	final := models.DomainProfile{
		OriginalHost:     "trap.tk",
		RegisteredDomain: "trap.tk",
		TLDRiskLevel:     models.TLDRiskCritical,
	}
	lc.FinalProfile = &final

	_, signals := e.Evaluate(uuid.New(), []risk.LinkContext{lc}, nil, rules.ActionNone)
	codes := make(map[models.SignalCode]bool)
	for _, s := range signals {
		codes[s.Code] = true
	}
	if !codes[models.SignalLinkShortener] || !codes[models.SignalShortenerSuspicious] {
		t.Fatalf("expected shortener and suspicious-target signals, got %v", signals)
	}
}

func TestEvaluateRedirectChainThreshold(t *testing.T) {
	e := newEngine(config.SensitivityNormal)

	lc := cleanLink("example.com")
	lc.Expanded = &models.ExpandedURL{RedirectCount: 2}
	_, signals := e.Evaluate(uuid.New(), []risk.LinkContext{lc}, nil, rules.ActionNone)
	if len(signals) != 0 {
		t.Fatalf("2 redirects must not signal, got %v", signals)
	}

	lc.Expanded.RedirectCount = 3
	_, signals = e.Evaluate(uuid.New(), []risk.LinkContext{lc}, nil, rules.ActionNone)
	if len(signals) != 1 || signals[0].Code != models.SignalRedirectChain {
		t.Fatalf("3 redirects must signal, got %v", signals)
	}
}

func TestEvaluateTopThreeReasons(t *testing.T) {
	e := newEngine(config.SensitivityNormal)

	lc := cleanLink("bit.ly")
	lc.Profile.HasUserInfo = true
	lc.Profile.IsShortener = true
	lc.Profile.SuspiciousPaths = []string{"login"}
	lc.Profile.TLDRiskLevel = models.TLDRiskHigh

	verdict, signals := e.Evaluate(uuid.New(), []risk.LinkContext{lc}, nil, rules.ActionNone)
	if len(signals) != 4 {
		t.Fatalf("expected 4 signals, got %d", len(signals))
	}
	if len(verdict.Reasons) != 3 {
		t.Fatalf("expected exactly 3 reasons, got %d", len(verdict.Reasons))
	}
	if verdict.Reasons[0].Code != models.SignalUserInfoInURL {
		t.Fatalf("reasons must be weight-ordered, got %s first", verdict.Reasons[0].Code)
	}
	for _, reason := range verdict.Reasons {
		if reason.Label == "" || reason.Detail == "" {
			t.Fatalf("reasons must be fully rendered: %+v", reason)
		}
	}
}

func TestEvaluateSensitivityShiftsBreakpoints(t *testing.T) {
	lc := cleanLink("bit.ly")
	lc.Profile.IsShortener = true // 30

	verdict, _ := newEngine(config.SensitivityLow).Evaluate(uuid.New(), []risk.LinkContext{lc}, nil, rules.ActionNone)
	if verdict.Level != models.VerdictSafe {
		t.Fatalf("low sensitivity: 30 is below the caution breakpoint, got %s", verdict.Level)
	}

	verdict, _ = newEngine(config.SensitivityHigh).Evaluate(uuid.New(), []risk.LinkContext{lc}, nil, rules.ActionNone)
	if verdict.Level != models.VerdictCaution {
		t.Fatalf("high sensitivity: 30 is above the caution breakpoint, got %s", verdict.Level)
	}
}

func TestEvaluateSenderSignalsIncluded(t *testing.T) {
	e := newEngine(config.SensitivityNormal)

	senderSignals := []models.Signal{{
		Code:   models.SignalSenderMismatch,
		Weight: 70,
		Meta:   models.SignalMeta{Brand: "HDFC Bank", BrandType: models.BrandTypeBank, SenderID: "+919812345678"},
	}}

	verdict, _ := e.Evaluate(uuid.New(), []risk.LinkContext{cleanLink("example.com")}, senderSignals, rules.ActionNone)
	if verdict.Level != models.VerdictDangerous {
		t.Fatalf("a bank sender mismatch alone reaches dangerous, got %s", verdict.Level)
	}
	if verdict.Reasons[0].Code != models.SignalSenderMismatch {
		t.Fatalf("expected sender mismatch reason, got %s", verdict.Reasons[0].Code)
	}
}

func TestEvaluateReputationMalicious(t *testing.T) {
	e := newEngine(config.SensitivityNormal)

	lc := cleanLink("evil-payload.com")
	lc.Reputation = []models.ReputationResult{
		{Source: "openphish", IsMalicious: false},
		{Source: "urlhaus", IsMalicious: true, ThreatType: "MALWARE"},
	}

	verdict, signals := e.Evaluate(uuid.New(), []risk.LinkContext{lc}, nil, rules.ActionNone)
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	sig := signals[0]
	if sig.Code != models.SignalReputationMalicious {
		t.Fatalf("expected reputation signal, got %s", sig.Code)
	}
	if sig.Weight != 80 {
		t.Fatalf("reputation hit weighs 80, got %d", sig.Weight)
	}
	if sig.Meta.Source != "urlhaus" || sig.Meta.ThreatType != "MALWARE" {
		t.Fatalf("signal must carry the malicious source, got %+v", sig.Meta)
	}
	if verdict.Level != models.VerdictDangerous {
		t.Fatalf("expected dangerous, got %s", verdict.Level)
	}
}
