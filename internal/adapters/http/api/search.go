package api

import (
	"context"
	"net/http"

	"github.com/okian/pricewise/internal/domain/errs"
	"github.com/okian/pricewise/internal/domain/types"
	"github.com/okian/pricewise/pkg/logger"
)

// SearchDependencies is the contract required by the search handler.
type SearchDependencies interface {
	Search(ctx context.Context, query string, userID uint) ([]types.RankedProduct, error)
}

// SearchHandler handles GET /search.
type SearchHandler struct {
	deps SearchDependencies
	log  logger.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps SearchDependencies, log logger.Logger) *SearchHandler {
	return &SearchHandler{deps: deps, log: log}
}

// HandleSearch ranks the listings for ?query= and returns them by rank.
// A valid bearer token also records the query in the caller's history.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	if !q.Has("query") {
		writeError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}

	uid, _ := UserIDFromContext(r.Context())
	out, err := h.deps.Search(r.Context(), q.Get("query"), uid)
	if err != nil {
		writeServiceError(w, r, h.log, errs.Wrap("api.search", err))
		return
	}
	if out == nil {
		out = []types.RankedProduct{}
	}
	writeJSON(w, http.StatusOK, out)
}
