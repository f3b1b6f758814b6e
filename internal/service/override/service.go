// Package override owns the user's local overrides: favorites, custom
// records, soft deletes and edits. State lives in memory and is written
// through to a durable key-value store after every mutation.
package override

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
)

// saveTimeout bounds one write-through.
const saveTimeout = 5 * time.Second

type kvStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// Store is the in-memory override state with write-through persistence.
type Store struct {
	log   *slog.Logger
	kv    kvStore
	clock func() time.Time

	mu        sync.RWMutex
	state     domain.OverrideState
	listeners []func()
}

// NewStore creates a Store with empty state. Call Load before serving.
func NewStore(log *slog.Logger, kv kvStore) *Store {
	return &Store{
		log:   log.With("service", "override"),
		kv:    kv,
		clock: time.Now,
		state: domain.EmptyOverrideState(),
	}
}

// OnChange registers fn to be called after every successful mutation.
// fn must not call back into the Store.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Load reads all four keys from durable storage into memory and returns a
// snapshot. It never fails: a missing, unreadable or corrupt key yields an
// empty container for that key only.
func (s *Store) Load(ctx context.Context) domain.OverrideState {
	state := domain.EmptyOverrideState()

	if v, ok := s.read(ctx, domain.KeyFavorites); ok {
		var ids domain.IDSet
		if s.decode(ctx, domain.KeyFavorites, v, &ids) && ids != nil {
			state.Favorites = ids
		}
	}
	if v, ok := s.read(ctx, domain.KeyCustom); ok {
		var records []domain.Record
		if s.decode(ctx, domain.KeyCustom, v, &records) && records != nil {
			state.Custom = normalizeCustom(records)
		}
	}
	if v, ok := s.read(ctx, domain.KeyDeleted); ok {
		var ids domain.IDSet
		if s.decode(ctx, domain.KeyDeleted, v, &ids) && ids != nil {
			state.Deleted = ids
		}
	}
	if v, ok := s.read(ctx, domain.KeyModified); ok {
		var modified map[int]domain.RecordPatch
		if s.decode(ctx, domain.KeyModified, v, &modified) && modified != nil {
			state.Modified = modified
		}
	}

	s.mu.Lock()
	s.state = state
	listeners := s.listeners
	s.mu.Unlock()

	s.log.InfoContext(ctx, "overrides loaded",
		slog.Int("favorites", len(state.Favorites)),
		slog.Int("custom", len(state.Custom)),
		slog.Int("deleted", len(state.Deleted)),
		slog.Int("modified", len(state.Modified)),
	)
	notify(listeners)

	return state.Clone()
}

// Save writes the non-nil maps of patch to durable storage in one batch.
// It does not touch in-memory state.
func (s *Store) Save(ctx context.Context, patch domain.OverridePatch) error {
	values := make(map[string]string, 4)

	if patch.Favorites != nil {
		if err := encodeInto(values, domain.KeyFavorites, patch.Favorites); err != nil {
			return err
		}
	}
	if patch.Custom != nil {
		if err := encodeInto(values, domain.KeyCustom, patch.Custom); err != nil {
			return err
		}
	}
	if patch.Deleted != nil {
		if err := encodeInto(values, domain.KeyDeleted, patch.Deleted); err != nil {
			return err
		}
	}
	if patch.Modified != nil {
		if err := encodeInto(values, domain.KeyModified, patch.Modified); err != nil {
			return err
		}
	}

	if len(values) == 0 {
		return nil
	}
	if err := s.kv.SetMany(ctx, values); err != nil {
		return fmt.Errorf("override.Save: %w", err)
	}
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.OverrideState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// IsFavorite reports whether id is a favorite.
func (s *Store) IsFavorite(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Favorites.Has(id)
}

// Reset clears every override in memory and in durable storage.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.state = domain.EmptyOverrideState()
	listeners := s.listeners
	err := s.kv.Delete(ctx, domain.KeyFavorites, domain.KeyCustom, domain.KeyDeleted, domain.KeyModified)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("override.Reset: %w", err)
	}
	s.log.InfoContext(ctx, "overrides reset")
	notify(listeners)
	return nil
}

// mutate runs fn under the write lock and persists the maps it returns.
// Persistence is best-effort: a storage failure is logged and the in-memory
// change stands.
func (s *Store) mutate(ctx context.Context, op string, fn func(st *domain.OverrideState) (domain.OverridePatch, error)) error {
	s.mu.Lock()
	patch, err := fn(&s.state)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	if saveErr := s.Save(saveCtx, patch); saveErr != nil {
		s.log.ErrorContext(ctx, "write-through failed",
			slog.String("op", op),
			slog.String("error", saveErr.Error()),
		)
	}
	cancel()
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners)
	return nil
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.WarnContext(ctx, "override key unreadable",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	return v, ok
}

func (s *Store) decode(ctx context.Context, key, raw string, dst any) bool {
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.WarnContext(ctx, "override key malformed, using empty default",
			slog.String("key", key),
			slog.String("error", fmt.Errorf("%w: %w", domain.ErrMalformedStorage, err).Error()),
		)
		return false
	}
	return true
}

func encodeInto(values map[string]string, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("override.Save: encode %s: %w", key, err)
	}
	values[key] = string(b)
	return nil
}

// normalizeCustom drops stored custom records without a usable id and marks
// the rest as custom.
func normalizeCustom(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r.ID <= 0 {
			continue
		}
		r.Custom = true
		if r.Types == nil {
			r.Types = []string{}
		}
		if r.Stats == nil {
			r.Stats = []domain.Stat{}
		}
		out = append(out, r)
	}
	return out
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
