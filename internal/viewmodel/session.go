package viewmodel

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/service/enrichment"
	"github.com/heartmarshall/pokedex-backend/internal/service/navigation"
)

type overrideIntents interface {
	ToggleFavorite(ctx context.Context, id int) (bool, error)
	CreateCustom(ctx context.Context, rec domain.Record) (domain.Record, error)
	SoftDelete(ctx context.Context, id int) error
	Restore(ctx context.Context, id int) error
	EditRecord(ctx context.Context, id int, patch domain.RecordPatch) error
	IsFavorite(id int) bool
}

type viewSource interface {
	Query(q domain.ViewQuery) domain.View
	DisplayName(rec domain.Record, edited bool, lang string) string
}

type targetResolver interface {
	Resolve(ctx context.Context, t navigation.Target) (navigation.Resolved, error)
}

type progressSource interface {
	Status() enrichment.Status
}

// Modal is the overlay currently open.
type Modal string

const (
	ModalNone   Modal = ""
	ModalCreate Modal = "create"
	ModalEdit   Modal = "edit"
	ModalDelete Modal = "confirm-delete"
)

// Deps groups the collaborators a Session dispatches to.
type Deps struct {
	Store    overrideIntents
	Views    viewSource
	Resolver targetResolver
	Progress progressSource
}

// Session holds UI-only state for one client: the current query, the
// open modal and the edit draft. It is not safe for concurrent use.
type Session struct {
	deps    Deps
	query   domain.ViewQuery
	modal   Modal
	modalID int
	draft   EditForm
}

// NewSession creates a session starting from q.
func NewSession(deps Deps, q domain.ViewQuery) *Session {
	return &Session{deps: deps, query: q.Normalize()}
}

// Query returns the current query state.
func (s *Session) Query() domain.ViewQuery { return s.query }

// Modal returns the open modal and the id it targets.
func (s *Session) Modal() (Modal, int) { return s.modal, s.modalID }

// Draft returns the edit draft buffer.
func (s *Session) Draft() EditForm { return s.draft }

// SetFilter selects a type filter; an empty type clears it.
func (s *Session) SetFilter(t string) {
	s.query.Type = domain.NormalizeText(t)
	s.query.Page = 1
}

// SetSearch sets the free-text search.
func (s *Session) SetSearch(text string) {
	s.query.Search = text
	s.query.Page = 1
}

// SetFavoritesOnly toggles the favorites-only filter.
func (s *Session) SetFavoritesOnly(on bool) {
	s.query.FavoritesOnly = on
	s.query.Page = 1
}

// SetSort selects the sort mode.
func (s *Session) SetSort(mode domain.SortMode) error {
	if !mode.IsValid() {
		return domain.NewValidationError("sort", fmt.Sprintf("unknown sort mode %q", mode))
	}
	s.query.Sort = mode
	return nil
}

// SetPage moves to page n (1-based).
func (s *Session) SetPage(n int) error {
	if n < 1 {
		return domain.NewValidationError("page", "must be at least 1")
	}
	s.query.Page = n
	return nil
}

// SetLanguage selects the display language by BCP 47 code.
func (s *Session) SetLanguage(code string) error {
	if _, err := language.Parse(code); err != nil {
		return domain.NewValidationError("lang", fmt.Sprintf("invalid language %q", code))
	}
	s.query.Language = code
	return nil
}

// List renders the current page.
func (s *Session) List() ListView {
	var status enrichment.Status
	if s.deps.Progress != nil {
		status = s.deps.Progress.Status()
	}
	return BuildList(s.deps.Views.Query(s.query), status)
}

// Detail resolves t and renders it in the session language.
func (s *Session) Detail(ctx context.Context, t navigation.Target) (DetailView, error) {
	res, err := s.deps.Resolver.Resolve(ctx, t)
	if err != nil {
		return DetailView{}, err
	}
	rec := res.Record
	return BuildDetail(domain.ViewItem{
		Record:      rec,
		DisplayName: s.deps.Views.DisplayName(rec, res.Edited, s.query.Language),
		Favorite:    s.deps.Store.IsFavorite(rec.ID),
		Modified:    res.Edited,
		Enriched:    true,
	}), nil
}

// ToggleFavorite flips the favorite flag of id.
func (s *Session) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	return s.deps.Store.ToggleFavorite(ctx, id)
}

// OpenCreate opens the creation modal.
func (s *Session) OpenCreate() {
	s.modal, s.modalID = ModalCreate, 0
}

// OpenEdit opens the edit modal with a draft prefilled from rec.
func (s *Session) OpenEdit(rec domain.Record) {
	s.modal, s.modalID = ModalEdit, rec.ID
	s.draft = DraftFor(rec)
}

// OpenDelete asks for delete confirmation of id.
func (s *Session) OpenDelete(id int) {
	s.modal, s.modalID = ModalDelete, id
}

// CloseModal discards the open modal and any draft.
func (s *Session) CloseModal() {
	s.modal, s.modalID = ModalNone, 0
	s.draft = EditForm{}
}

// CreateCustom validates form and stores a new custom record. On success
// the modal closes and the target of the new record is returned.
func (s *Session) CreateCustom(ctx context.Context, form CustomForm) (domain.Record, navigation.Target, error) {
	rec, err := form.Record()
	if err != nil {
		return domain.Record{}, navigation.Target{}, err
	}
	created, err := s.deps.Store.CreateCustom(ctx, rec)
	if err != nil {
		return domain.Record{}, navigation.Target{}, err
	}
	s.CloseModal()
	return created, navigation.TargetFor(created), nil
}

// EditRecord validates form and stores it as an edit of id.
func (s *Session) EditRecord(ctx context.Context, id int, form EditForm) error {
	patch, err := form.Patch()
	if err != nil {
		return err
	}
	if err := s.deps.Store.EditRecord(ctx, id, patch); err != nil {
		return err
	}
	s.CloseModal()
	return nil
}

// SoftDelete hides id from every view.
func (s *Session) SoftDelete(ctx context.Context, id int) error {
	if err := s.deps.Store.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.CloseModal()
	return nil
}

// Restore undoes a soft delete of id.
func (s *Session) Restore(ctx context.Context, id int) error {
	return s.deps.Store.Restore(ctx, id)
}
