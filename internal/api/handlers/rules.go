package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"smishguard/internal/rules"
	"smishguard/pkg/logger"
)

// RulesHandler handles user override rule endpoints
type RulesHandler struct {
	store  *rules.Store
	logger *logger.Logger
}

// NewRulesHandler creates a new RulesHandler
func NewRulesHandler(store *rules.Store, log *logger.Logger) *RulesHandler {
	return &RulesHandler{
		store:  store,
		logger: log.WithComponent("rules-handler"),
	}
}

// List handles GET /api/v1/rules
func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.store.List())
}

// Add handles POST /api/v1/rules
func (h *RulesHandler) Add(w http.ResponseWriter, r *http.Request) {
	var rule rules.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.store.Add(rule)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// Delete handles DELETE /api/v1/rules/{id}
func (h *RulesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid rule id", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, rules.ErrNotFound) {
			http.Error(w, "Rule not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
