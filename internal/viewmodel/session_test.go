package viewmodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/service/enrichment"
	"github.com/heartmarshall/pokedex-backend/internal/service/navigation"
)

type mockStore struct {
	toggleFavoriteFn func(ctx context.Context, id int) (bool, error)
	createCustomFn   func(ctx context.Context, rec domain.Record) (domain.Record, error)
	softDeleteFn     func(ctx context.Context, id int) error
	restoreFn        func(ctx context.Context, id int) error
	editRecordFn     func(ctx context.Context, id int, patch domain.RecordPatch) error
	favorites        domain.IDSet
}

func (m *mockStore) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	return m.toggleFavoriteFn(ctx, id)
}

func (m *mockStore) CreateCustom(ctx context.Context, rec domain.Record) (domain.Record, error) {
	return m.createCustomFn(ctx, rec)
}

func (m *mockStore) SoftDelete(ctx context.Context, id int) error { return m.softDeleteFn(ctx, id) }

func (m *mockStore) Restore(ctx context.Context, id int) error { return m.restoreFn(ctx, id) }

func (m *mockStore) EditRecord(ctx context.Context, id int, patch domain.RecordPatch) error {
	return m.editRecordFn(ctx, id, patch)
}

func (m *mockStore) IsFavorite(id int) bool { return m.favorites.Has(id) }

type mockViews struct {
	queryFn func(q domain.ViewQuery) domain.View
}

func (m *mockViews) Query(q domain.ViewQuery) domain.View { return m.queryFn(q) }

func (m *mockViews) DisplayName(rec domain.Record, edited bool, lang string) string {
	if !edited && rec.Names[lang] != "" {
		return rec.Names[lang]
	}
	return rec.Name
}

type mockResolver struct {
	resolveFn func(ctx context.Context, t navigation.Target) (navigation.Resolved, error)
}

func (m *mockResolver) Resolve(ctx context.Context, t navigation.Target) (navigation.Resolved, error) {
	return m.resolveFn(ctx, t)
}

type fixedProgress enrichment.Status

func (p fixedProgress) Status() enrichment.Status { return enrichment.Status(p) }

func enrichmentDone() enrichment.Status {
	return enrichment.Status{State: enrichment.StateDone, Cursor: 2, Total: 2, Enriched: 2}
}

func TestSession_QueryIntents(t *testing.T) {
	t.Parallel()

	s := NewSession(Deps{}, domain.ViewQuery{})
	assert.Equal(t, 1, s.Query().Page)
	assert.Equal(t, "en", s.Query().Language)

	require.NoError(t, s.SetPage(3))
	s.SetFilter(" Fire ")
	assert.Equal(t, "fire", s.Query().Type)
	assert.Equal(t, 1, s.Query().Page)

	require.NoError(t, s.SetPage(2))
	s.SetSearch("pika")
	assert.Equal(t, 1, s.Query().Page)

	require.NoError(t, s.SetPage(2))
	s.SetFavoritesOnly(true)
	assert.Equal(t, 1, s.Query().Page)

	require.NoError(t, s.SetPage(2))
	require.NoError(t, s.SetSort(domain.SortStatsDesc))
	require.NoError(t, s.SetLanguage("zh-Hans"))
	assert.Equal(t, 2, s.Query().Page)

	assert.ErrorIs(t, s.SetSort("random"), domain.ErrValidation)
	assert.ErrorIs(t, s.SetPage(0), domain.ErrValidation)
	assert.ErrorIs(t, s.SetLanguage("not a language!"), domain.ErrValidation)
	assert.Equal(t, domain.SortStatsDesc, s.Query().Sort)
	assert.Equal(t, "zh-Hans", s.Query().Language)
}

func TestSession_List(t *testing.T) {
	t.Parallel()

	var got domain.ViewQuery
	views := &mockViews{queryFn: func(q domain.ViewQuery) domain.View {
		got = q
		return domain.View{Query: q, Items: []domain.ViewItem{{Record: domain.Record{ID: 1, Name: "bulbasaur"}}}}
	}}
	s := NewSession(Deps{Views: views, Progress: fixedProgress(enrichmentDone())}, domain.ViewQuery{})
	s.SetFilter("grass")

	lv := s.List()

	assert.Equal(t, "grass", got.Type)
	require.Len(t, lv.Cards, 1)
	assert.Equal(t, enrichment.StateDone, lv.Enrichment.State)
}

func TestSession_CreateCustom(t *testing.T) {
	t.Parallel()

	var stored domain.Record
	store := &mockStore{createCustomFn: func(_ context.Context, rec domain.Record) (domain.Record, error) {
		stored = rec
		rec.ID = 1_700_000_000_000
		return rec, nil
	}}
	s := NewSession(Deps{Store: store}, domain.ViewQuery{})
	s.OpenCreate()

	created, target, err := s.CreateCustom(context.Background(), CustomForm{Name: "Homebrew", Types: "ghost"})
	require.NoError(t, err)
	assert.Equal(t, "Homebrew", stored.Name)
	assert.Equal(t, navigation.KindByID, target.Kind)
	assert.Equal(t, created.ID, target.ID)
	require.NotNil(t, target.Payload)
	mode, _ := s.Modal()
	assert.Equal(t, ModalNone, mode)
}

func TestSession_InvalidFormSavesNothing(t *testing.T) {
	t.Parallel()

	store := &mockStore{
		createCustomFn: func(context.Context, domain.Record) (domain.Record, error) {
			t.Fatal("create must not be called")
			return domain.Record{}, nil
		},
		editRecordFn: func(context.Context, int, domain.RecordPatch) error {
			t.Fatal("edit must not be called")
			return nil
		},
	}
	s := NewSession(Deps{Store: store}, domain.ViewQuery{})
	s.OpenEdit(domain.Record{ID: 25, Name: "pikachu"})

	_, _, err := s.CreateCustom(context.Background(), CustomForm{Height: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = s.EditRecord(context.Background(), 25, EditForm{Name: "ok", Weight: "heavy"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	mode, id := s.Modal()
	assert.Equal(t, ModalEdit, mode)
	assert.Equal(t, 25, id)
	assert.Equal(t, "pikachu", s.Draft().Name)
}

func TestSession_EditAndDelete(t *testing.T) {
	t.Parallel()

	var edited domain.RecordPatch
	var deleted int
	store := &mockStore{
		editRecordFn: func(_ context.Context, id int, patch domain.RecordPatch) error {
			edited = patch
			return nil
		},
		softDeleteFn: func(_ context.Context, id int) error {
			deleted = id
			return nil
		},
	}
	s := NewSession(Deps{Store: store}, domain.ViewQuery{})

	s.OpenEdit(domain.Record{ID: 25, Name: "pikachu"})
	require.NoError(t, s.EditRecord(context.Background(), 25, EditForm{Name: "Sparky"}))
	require.NotNil(t, edited.Name)
	assert.Equal(t, "Sparky", *edited.Name)

	s.OpenDelete(25)
	require.NoError(t, s.SoftDelete(context.Background(), 25))
	assert.Equal(t, 25, deleted)
	mode, _ := s.Modal()
	assert.Equal(t, ModalNone, mode)
}

func TestSession_Detail(t *testing.T) {
	t.Parallel()

	resolver := &mockResolver{resolveFn: func(_ context.Context, tgt navigation.Target) (navigation.Resolved, error) {
		if tgt.ID != 4 {
			return navigation.Resolved{}, domain.ErrNotFound
		}
		return navigation.Resolved{
			Record: domain.Record{ID: 4, Name: "charmander", Names: map[string]string{"fr": "Salamèche"}},
			Source: navigation.SourceCatalog,
		}, nil
	}}
	store := &mockStore{favorites: domain.NewIDSet(4)}
	s := NewSession(Deps{Store: store, Views: &mockViews{}, Resolver: resolver}, domain.ViewQuery{Language: "fr"})

	d, err := s.Detail(context.Background(), navigation.Target{Kind: navigation.KindByID, ID: 4})
	require.NoError(t, err)
	assert.Equal(t, "Salamèche", d.Name)
	assert.True(t, d.Favorite)

	_, err = s.Detail(context.Background(), navigation.Target{Kind: navigation.KindByID, ID: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
