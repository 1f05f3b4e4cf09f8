package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/harsha33983/harshaflix/models"
	"github.com/harsha33983/harshaflix/services/catalog"
	"github.com/harsha33983/harshaflix/services/details"
)

type detailsService interface {
	Get(ctx context.Context, id models.TitleID, kind models.MediaKind) (*models.DetailRecord, error)
}

var _ detailsService = (*details.Aggregator)(nil)

// DetailsHandler serves the composite detail-page payload.
type DetailsHandler struct {
	Service detailsService
}

func NewDetailsHandler(s detailsService) *DetailsHandler {
	return &DetailsHandler{Service: s}
}

// Get handles GET /api/details/{kind}/{id}. A missing title is 404; a
// catalog provider failure is 502. An absent video match is neither.
func (h *DetailsHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := models.ParseMediaKind(vars["kind"])
	id := models.TitleID(strings.TrimSpace(vars["id"]))
	if id == "" {
		http.Error(w, `{"error": "title id is required"}`, http.StatusBadRequest)
		return
	}

	record, err := h.Service.Get(r.Context(), id, kind)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "title not found")
			return
		}
		var perr *catalog.ProviderError
		if errors.As(err, &perr) {
			log.Printf("[details] provider failure for %s/%s: %v", kind, id, err)
			writeJSONError(w, http.StatusBadGateway, "catalog provider unavailable")
			return
		}
		log.Printf("[details] lookup failed for %s/%s: %v", kind, id, err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}
