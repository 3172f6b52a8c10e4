package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/pricewise/internal/domain/errs"
	"github.com/okian/pricewise/internal/domain/types"
	"github.com/okian/pricewise/pkg/logger"
)

// HistoryDependencies is the contract required by the history and filter
// handlers.
type HistoryDependencies interface {
	SaveSearchHistory(ctx context.Context, userID uint, query string) (types.SearchHistoryEntry, error)
	SearchHistory(ctx context.Context, userID uint) ([]types.SearchHistoryEntry, error)
	SetPreference(ctx context.Context, userID uint, key, value string) error
	ApplyFilters(ctx context.Context, userID uint) ([]types.Product, error)
}

type saveHistoryRequest struct {
	SearchQuery string `json:"search_query"`
}

func (r saveHistoryRequest) validate() error {
	if strings.TrimSpace(r.SearchQuery) == "" {
		return errs.New("api.saveHistory", errs.ErrValidation, "Search query is required")
	}
	return nil
}

type preferenceRequest struct {
	Key   string `json:"preference_key"`
	Value string `json:"preference_value"`
}

func (r preferenceRequest) validate() error {
	if strings.TrimSpace(r.Key) == "" || strings.TrimSpace(r.Value) == "" {
		return errs.New("api.setPreference", errs.ErrValidation, "Preference key and preference value are required")
	}
	return nil
}

type historyResponse struct {
	SearchHistory []types.SearchHistoryEntry `json:"search_history"`
}

type filtersResponse struct {
	Products []types.Product `json:"products"`
}

// HistoryHandler handles saved searches and sort preferences.
type HistoryHandler struct {
	deps HistoryDependencies
	log  logger.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies, log logger.Logger) *HistoryHandler {
	return &HistoryHandler{deps: deps, log: log}
}

// HandleSaveSearchHistory handles POST /save-search-history.
func (h *HistoryHandler) HandleSaveSearchHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	uid, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, ErrMissingToken.Error())
		return
	}
	var req saveHistoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if _, err := h.deps.SaveSearchHistory(r.Context(), uid, req.SearchQuery); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "Search history saved successfully"})
}

// HandleGetSearchHistory handles GET /get-search-history.
func (h *HistoryHandler) HandleGetSearchHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	uid, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, ErrMissingToken.Error())
		return
	}
	entries, err := h.deps.SearchHistory(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if entries == nil {
		entries = []types.SearchHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{SearchHistory: entries})
}

// HandleSetPreference handles POST /set-preference.
func (h *HistoryHandler) HandleSetPreference(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	uid, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, ErrMissingToken.Error())
		return
	}
	var req preferenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := h.deps.SetPreference(r.Context(), uid, req.Key, req.Value); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Preference updated successfully"})
}

// HandleApplyFilters handles GET /apply-filters.
func (h *HistoryHandler) HandleApplyFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	uid, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, ErrMissingToken.Error())
		return
	}
	products, err := h.deps.ApplyFilters(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if products == nil {
		products = []types.Product{}
	}
	writeJSON(w, http.StatusOK, filtersResponse{Products: products})
}
