package rest

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/viewmodel"
)

type facetSource interface {
	Query(q domain.ViewQuery) domain.View
}

// MetaHandler serves enrichment progress and filter facets.
type MetaHandler struct {
	catalog  facetSource
	progress enrichmentProgress
	log      *slog.Logger
}

// NewMetaHandler creates a MetaHandler.
func NewMetaHandler(catalog facetSource, progress enrichmentProgress, logger *slog.Logger) *MetaHandler {
	return &MetaHandler{catalog: catalog, progress: progress, log: logger.With("handler", "meta")}
}

// FacetsResponse lists the available type filters and display languages.
type FacetsResponse struct {
	Types     []viewmodel.Facet `json:"types"`
	Languages []string          `json:"languages"`
	Revision  uint64            `json:"revision"`
}

// Enrichment reports the enrichment state machine.
// GET /api/v1/enrichment
func (h *MetaHandler) Enrichment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.progress.Status())
}

// Facets lists types and languages.
// GET /api/v1/facets?type=
func (h *MetaHandler) Facets(w http.ResponseWriter, r *http.Request) {
	active := domain.NormalizeText(r.URL.Query().Get("type"))
	v := h.catalog.Query(domain.ViewQuery{})
	writeJSON(w, http.StatusOK, FacetsResponse{
		Types:     viewmodel.BuildFacets(v.Types, active),
		Languages: v.Languages,
		Revision:  v.Revision,
	})
}
