package override

import (
	"context"
	"slices"
	"strings"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
)

// ToggleFavorite flips id's favorite flag and returns the new value.
func (s *Store) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	if id <= 0 {
		return false, domain.NewValidationError("id", "must be positive")
	}

	var now bool
	err := s.mutate(ctx, "toggle_favorite", func(st *domain.OverrideState) (domain.OverridePatch, error) {
		if st.Favorites.Has(id) {
			delete(st.Favorites, id)
		} else {
			st.Favorites[id] = struct{}{}
			now = true
		}
		return domain.OverridePatch{Favorites: st.Favorites}, nil
	})
	return now, err
}

// CreateCustom stores rec as a new custom record with a fresh synthetic id
// and prepends it to the custom list.
func (s *Store) CreateCustom(ctx context.Context, rec domain.Record) (domain.Record, error) {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return domain.Record{}, domain.NewValidationError("name", "required")
	}

	var created domain.Record
	err := s.mutate(ctx, "create_custom", func(st *domain.OverrideState) (domain.OverridePatch, error) {
		taken := make(domain.IDSet, len(st.Custom))
		for _, c := range st.Custom {
			taken[c.ID] = struct{}{}
		}

		created = rec.Clone()
		created.ID = domain.NewSyntheticID(s.clock(), taken)
		created.Custom = true
		created.Reference = ""
		created.Types = domain.DedupTypes(created.Types)
		if created.Stats == nil {
			created.Stats = []domain.Stat{}
		}

		st.Custom = slices.Insert(st.Custom, 0, created)
		return domain.OverridePatch{Custom: st.Custom}, nil
	})
	if err != nil {
		return domain.Record{}, err
	}

	s.log.InfoContext(ctx, "custom record created", "id", created.ID, "name", created.Name)
	return created.Clone(), nil
}

// SoftDelete hides id from every view. Other override maps keep their data.
func (s *Store) SoftDelete(ctx context.Context, id int) error {
	if id <= 0 {
		return domain.NewValidationError("id", "must be positive")
	}
	return s.mutate(ctx, "soft_delete", func(st *domain.OverrideState) (domain.OverridePatch, error) {
		st.Deleted[id] = struct{}{}
		return domain.OverridePatch{Deleted: st.Deleted}, nil
	})
}

// Restore undoes a soft delete. Restoring a visible id is a no-op.
func (s *Store) Restore(ctx context.Context, id int) error {
	if id <= 0 {
		return domain.NewValidationError("id", "must be positive")
	}
	return s.mutate(ctx, "restore", func(st *domain.OverrideState) (domain.OverridePatch, error) {
		delete(st.Deleted, id)
		return domain.OverridePatch{Deleted: st.Deleted}, nil
	})
}

// EditRecord records a partial override for id. For a custom record the
// stored record itself is updated; otherwise patch is merged into any
// existing modification for id.
func (s *Store) EditRecord(ctx context.Context, id int, patch domain.RecordPatch) error {
	if id <= 0 {
		return domain.NewValidationError("id", "must be positive")
	}
	if patch.IsEmpty() {
		return domain.NewValidationError("patch", "no fields to update")
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.NewValidationError("name", "required")
		}
		patch.Name = &name
	}

	return s.mutate(ctx, "edit_record", func(st *domain.OverrideState) (domain.OverridePatch, error) {
		for i, c := range st.Custom {
			if c.ID == id {
				updated := patch.Apply(c)
				updated.Custom = true
				st.Custom[i] = updated
				return domain.OverridePatch{Custom: st.Custom}, nil
			}
		}

		if existing, ok := st.Modified[id]; ok {
			st.Modified[id] = existing.Merge(patch)
		} else {
			st.Modified[id] = domain.RecordPatch{}.Merge(patch)
		}
		return domain.OverridePatch{Modified: st.Modified}, nil
	})
}
