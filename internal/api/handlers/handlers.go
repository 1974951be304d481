package handlers

import (
	"smishguard/internal/analysis"
	"smishguard/internal/analysis/reputation"
	"smishguard/internal/analysis/sender"
	"smishguard/internal/infrastructure/cache"
	"smishguard/internal/rules"
	"smishguard/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health  *HealthHandler
	Analyze *AnalyzeHandler
	Packs   *PacksHandler
	Rules   *RulesHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Pipeline   *analysis.Pipeline
	Packs      *sender.PackStore
	Rules      *rules.Store
	Reputation *reputation.Aggregator
	Redis      *cache.RedisStore
	Version    string
	Logger     *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Redis, deps.Reputation, deps.Version, deps.Logger),
		Analyze: NewAnalyzeHandler(deps.Pipeline, deps.Logger),
		Packs:   NewPacksHandler(deps.Packs, deps.Logger),
		Rules:   NewRulesHandler(deps.Rules, deps.Logger),
	}
}
