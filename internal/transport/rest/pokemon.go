package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/service/enrichment"
	"github.com/heartmarshall/pokedex-backend/internal/service/navigation"
	"github.com/heartmarshall/pokedex-backend/internal/viewmodel"
	"github.com/heartmarshall/pokedex-backend/pkg/ctxutil"
)

type overrideStore interface {
	ToggleFavorite(ctx context.Context, id int) (bool, error)
	CreateCustom(ctx context.Context, rec domain.Record) (domain.Record, error)
	SoftDelete(ctx context.Context, id int) error
	Restore(ctx context.Context, id int) error
	EditRecord(ctx context.Context, id int, patch domain.RecordPatch) error
	IsFavorite(id int) bool
	Snapshot() domain.OverrideState
}

type catalogView interface {
	Query(q domain.ViewQuery) domain.View
	DisplayName(rec domain.Record, edited bool, lang string) string
	EnsurePage(ctx context.Context, n int) error
	PageSize() int
}

type recordResolver interface {
	Resolve(ctx context.Context, t navigation.Target) (navigation.Resolved, error)
}

type enrichmentProgress interface {
	Status() enrichment.Status
}

// PokemonHandler serves the catalog list, detail and edit endpoints.
type PokemonHandler struct {
	store    overrideStore
	catalog  catalogView
	resolver recordResolver
	progress enrichmentProgress
	log      *slog.Logger
}

// NewPokemonHandler creates a PokemonHandler.
func NewPokemonHandler(store overrideStore, catalog catalogView, resolver recordResolver, progress enrichmentProgress, logger *slog.Logger) *PokemonHandler {
	return &PokemonHandler{
		store:    store,
		catalog:  catalog,
		resolver: resolver,
		progress: progress,
		log:      logger.With("handler", "pokemon"),
	}
}

// FavoriteResponse reports a favorite flag after a toggle.
type FavoriteResponse struct {
	ID       int  `json:"id"`
	Favorite bool `json:"favorite"`
}

// CreatedResponse is returned after creating a custom record.
type CreatedResponse struct {
	Detail viewmodel.DetailView `json:"detail"`
	Target string               `json:"target"`
}

// List renders one page of the catalog.
// GET /api/v1/pokemon?type=&search=&sort=&page=&lang=&favorites=
func (h *PokemonHandler) List(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.render(r.Context(), s))
}

// Get renders one record by id.
// GET /api/v1/pokemon/{id}
func (h *PokemonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	h.detail(w, r, navigation.Target{Kind: navigation.KindByID, ID: id})
}

// Lookup renders one record by its remote reference.
// GET /api/v1/pokemon/lookup?url=
func (h *PokemonHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("url")
	if ref == "" {
		writeDomainError(r.Context(), h.log, w, domain.NewValidationError("url", "required"))
		return
	}
	h.detail(w, r, navigation.Target{Kind: navigation.KindByReference, Reference: ref})
}

// Create stores a custom record.
// POST /api/v1/pokemon
func (h *PokemonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form viewmodel.CustomForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}

	s, err := h.session(r)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	_, target, err := s.CreateCustom(r.Context(), form)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}

	d, err := s.Detail(r.Context(), target)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	w.Header().Set("Location", "/api/v1"+target.Path())
	writeJSON(w, http.StatusCreated, CreatedResponse{Detail: d, Target: target.Path()})
}

// Edit stores an edit of a record and returns the updated detail.
// PATCH /api/v1/pokemon/{id}
func (h *PokemonHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	var form viewmodel.EditForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}

	s, err := h.session(r)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	if err := s.EditRecord(r.Context(), id, form); err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	h.detail(w, r, navigation.Target{Kind: navigation.KindByID, ID: id})
}

// Delete soft-deletes a record.
// DELETE /api/v1/pokemon/{id}
func (h *PokemonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	if err := h.store.SoftDelete(r.Context(), id); err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restore undoes a soft delete.
// POST /api/v1/pokemon/{id}/restore
func (h *PokemonHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	if err := h.store.Restore(r.Context(), id); err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	h.detail(w, r, navigation.Target{Kind: navigation.KindByID, ID: id})
}

// ToggleFavorite flips the favorite flag of a record.
// POST /api/v1/favorites/{id}
func (h *PokemonHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	fav, err := h.store.ToggleFavorite(r.Context(), id)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoriteResponse{ID: id, Favorite: fav})
}

// Favorites lists favorite ids.
// GET /api/v1/favorites
func (h *PokemonHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]int{"ids": h.store.Snapshot().Favorites.Sorted()})
}

func (h *PokemonHandler) detail(w http.ResponseWriter, r *http.Request, t navigation.Target) {
	s, err := h.session(r)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	d, err := s.Detail(r.Context(), t)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *PokemonHandler) render(ctx context.Context, s *viewmodel.Session) viewmodel.ListView {
	// Backend page loading failures degrade to whatever is already loaded.
	_ = h.catalog.EnsurePage(ctx, s.Query().Page)
	lv := s.List()
	lv.Pagination.PageSize = h.catalog.PageSize()
	return lv
}

// session builds a viewmodel session from the request query string.
func (h *PokemonHandler) session(r *http.Request) (*viewmodel.Session, error) {
	s := viewmodel.NewSession(viewmodel.Deps{
		Store:    h.store,
		Views:    h.catalog,
		Resolver: h.resolver,
		Progress: h.progress,
	}, domain.ViewQuery{})

	q := r.URL.Query()
	lang := q.Get("lang")
	if lang == "" {
		lang = ctxutil.LanguageFromCtx(r.Context(), domain.DefaultLanguage)
	}
	if err := s.SetLanguage(lang); err != nil {
		return nil, err
	}
	if v := q.Get("sort"); v != "" {
		if err := s.SetSort(domain.SortMode(v)); err != nil {
			return nil, err
		}
	}
	s.SetFilter(q.Get("type"))
	s.SetSearch(q.Get("search"))
	if v := q.Get("favorites"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, domain.NewValidationError("favorites", "must be a boolean")
		}
		s.SetFavoritesOnly(on)
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, domain.NewValidationError("page", "must be an integer")
		}
		if err := s.SetPage(n); err != nil {
			return nil, err
		}
	}
	return s, nil
}
