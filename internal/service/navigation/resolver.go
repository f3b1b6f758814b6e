package navigation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
)

const (
	loaderWait     = 2 * time.Millisecond
	loaderMaxBatch = 50
	defaultCache   = 512
)

// Source names where a resolved record came from.
type Source string

const (
	SourcePayload Source = "payload"
	SourceCustom  Source = "custom"
	SourceCatalog Source = "catalog"
	SourceRemote  Source = "remote"
)

type overrideSource interface {
	Snapshot() domain.OverrideState
}

type catalogSource interface {
	Detail(id int) (domain.Record, bool)
	Entry(id int) (domain.ListingEntry, bool)
}

type remoteSource interface {
	FetchDetailBatch(ctx context.Context, refs []string) []*domain.Record
	ReferenceFor(id int) string
}

// Resolved is a record ready for the detail view.
type Resolved struct {
	Record domain.Record
	Edited bool
	Source Source
}

// Resolver turns a Target into the freshest available record.
type Resolver struct {
	log       *slog.Logger
	overrides overrideSource
	catalog   catalogSource
	remote    remoteSource
	loader    *dataloader.Loader[string, *domain.Record]
}

// NewResolver creates a Resolver. Remote fetches are batched per reference
// and cached in an LRU of cacheSize entries.
func NewResolver(log *slog.Logger, overrides overrideSource, catalog catalogSource, remote remoteSource, cacheSize int) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCache
	}
	cache, err := newLRUCache(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("navigation: create cache: %w", err)
	}

	r := &Resolver{
		log:       log.With("service", "navigation"),
		overrides: overrides,
		catalog:   catalog,
		remote:    remote,
	}
	r.loader = dataloader.NewBatchedLoader(
		r.batchFetch,
		dataloader.WithCache[string, *domain.Record](cache),
		dataloader.WithWait[string, *domain.Record](loaderWait),
		dataloader.WithBatchCapacity[string, *domain.Record](loaderMaxBatch),
	)
	return r, nil
}

// Resolve returns the record for t. Order: carried payload, custom record,
// catalog detail, remote fetch. The stored edit for the id, if any, is
// applied last. Unresolvable and soft-deleted targets yield ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, t Target) (Resolved, error) {
	if t.Kind == KindList {
		return Resolved{}, fmt.Errorf("resolve list target: %w", domain.ErrValidation)
	}

	ov := r.overrides.Snapshot()

	id := t.ID
	if id <= 0 && t.Reference != "" {
		if parsed, err := domain.IDFromReference(t.Reference); err == nil {
			id = parsed
		}
	}
	if id > 0 && ov.Deleted.Has(id) {
		return Resolved{}, fmt.Errorf("record %d: %w", id, domain.ErrNotFound)
	}

	// Custom records always render from their stored shape.
	if id > 0 {
		if c, ok := ov.CustomByID(id); ok {
			return Resolved{Record: c, Edited: true, Source: SourceCustom}, nil
		}
	}

	res, err := r.resolveBase(ctx, t, id)
	if err != nil {
		return Resolved{}, err
	}

	if p, ok := ov.Modified[res.Record.ID]; ok {
		res.Record = p.Apply(res.Record)
		res.Edited = p.Name != nil
	}
	return res, nil
}

func (r *Resolver) resolveBase(ctx context.Context, t Target, id int) (Resolved, error) {
	if t.Payload != nil {
		rec := t.Payload.Clone()
		if rec.ID <= 0 {
			rec.ID = id
		}
		return Resolved{Record: rec, Source: SourcePayload}, nil
	}

	if id > 0 {
		if rec, ok := r.catalog.Detail(id); ok {
			return Resolved{Record: rec, Source: SourceCatalog}, nil
		}
	}

	ref := t.Reference
	if ref == "" && id > 0 {
		if e, ok := r.catalog.Entry(id); ok && e.Reference != "" {
			ref = e.Reference
		} else if !domain.IsSynthetic(id) {
			ref = r.remote.ReferenceFor(id)
		}
	}
	if ref == "" {
		return Resolved{}, fmt.Errorf("record %d: %w", id, domain.ErrNotFound)
	}

	rec, err := r.loader.Load(ctx, ref)()
	if err != nil {
		r.loader.Clear(ctx, ref)
		return Resolved{}, err
	}
	if rec == nil {
		r.loader.Clear(ctx, ref)
		return Resolved{}, fmt.Errorf("reference %s: %w", ref, domain.ErrNotFound)
	}
	return Resolved{Record: rec.Clone(), Source: SourceRemote}, nil
}

// batchFetch resolves references through the remote batch endpoint. A
// missing record is a nil result, not an error.
//
// A batch carries the context of whichever caller opened it but serves every
// caller in the window, so cancellation is detached here; the remote bounds
// each item with its own timeout.
func (r *Resolver) batchFetch(ctx context.Context, refs []string) []*dataloader.Result[*domain.Record] {
	records := r.remote.FetchDetailBatch(context.WithoutCancel(ctx), refs)
	results := make([]*dataloader.Result[*domain.Record], len(refs))
	for i := range refs {
		var rec *domain.Record
		if i < len(records) {
			rec = records[i]
		}
		results[i] = &dataloader.Result[*domain.Record]{Data: rec}
	}
	r.log.DebugContext(ctx, "remote detail batch", slog.Int("refs", len(refs)))
	return results
}

// lruCache adapts golang-lru to the dataloader cache interface.
type lruCache struct {
	c *lru.Cache[string, dataloader.Thunk[*domain.Record]]
}

func newLRUCache(size int) (*lruCache, error) {
	c, err := lru.New[string, dataloader.Thunk[*domain.Record]](size)
	if err != nil {
		return nil, err
	}
	return &lruCache{c: c}, nil
}

func (l *lruCache) Get(_ context.Context, key string) (dataloader.Thunk[*domain.Record], bool) {
	return l.c.Get(key)
}

func (l *lruCache) Set(_ context.Context, key string, value dataloader.Thunk[*domain.Record]) {
	l.c.Add(key, value)
}

func (l *lruCache) Delete(_ context.Context, key string) bool {
	return l.c.Remove(key)
}

func (l *lruCache) Clear() {
	l.c.Purge()
}
