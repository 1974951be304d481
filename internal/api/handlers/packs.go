package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"smishguard/internal/analysis/sender"
	"smishguard/pkg/logger"
)

// maxPackSize caps the accepted pack payload at 1 MiB
const maxPackSize = 1 << 20

// PacksHandler handles sender pack endpoints
type PacksHandler struct {
	store  *sender.PackStore
	logger *logger.Logger
}

// NewPacksHandler creates a new PacksHandler
func NewPacksHandler(store *sender.PackStore, log *logger.Logger) *PacksHandler {
	return &PacksHandler{
		store:  store,
		logger: log.WithComponent("packs-handler"),
	}
}

// PackInfo summarizes an installed pack without exposing its internals
type PackInfo struct {
	Region   string    `json:"region"`
	Version  int       `json:"version"`
	Brands   []string  `json:"brands"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Upload handles POST /api/v1/packs. The body is the signed pack document
// itself; a pack with a bad signature or a stale version is rejected and
// the previously active pack stays in place.
func (h *PacksHandler) Upload(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPackSize))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if len(payload) == 0 {
		http.Error(w, "Pack payload is required", http.StatusBadRequest)
		return
	}

	pack, err := h.store.Load(payload)
	if err != nil {
		h.logger.Warn().Err(err).Msg("pack rejected")
		status := http.StatusUnprocessableEntity
		if errors.Is(err, sender.ErrBadSignature) {
			status = http.StatusForbidden
		}
		if errors.Is(err, sender.ErrStaleVersion) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(packInfo(pack))
}

// Active handles GET /api/v1/packs/active
func (h *PacksHandler) Active(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		http.Error(w, "region query parameter is required", http.StatusBadRequest)
		return
	}

	pack := h.store.Active(region)
	if pack == nil {
		http.Error(w, "No active pack for region", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(packInfo(pack))
}

func packInfo(p *sender.CompiledPack) PackInfo {
	return PackInfo{
		Region:   p.Region,
		Version:  p.Version,
		Brands:   p.Brands(),
		LoadedAt: p.LoadedAt,
	}
}
