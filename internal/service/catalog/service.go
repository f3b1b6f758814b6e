// Package catalog reconciles backend pages, the full listing, enriched
// details, localized names and local overrides into one queryable view.
package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/provider"
)

const (
	defaultPageSize = 20
	// maxBackendPages bounds the backend pages kept for concurrent readers.
	maxBackendPages = 64
)

// DefaultLanguages are always offered, before any names are resolved.
var DefaultLanguages = []string{"en", "fr", "ja", "zh-Hans"}

type overrideSource interface {
	Snapshot() domain.OverrideState
}

type pageSource interface {
	FetchPage(ctx context.Context, page, limit int) (*provider.Page, error)
}

// Options configures a Catalog.
type Options struct {
	PageSize  int
	Languages []string
}

// Batch is one resolved enrichment batch.
type Batch struct {
	Details []domain.Record
	Names   []provider.LocalizedNames
}

// Catalog owns all remote-sourced state. It is safe for concurrent use.
type Catalog struct {
	log       *slog.Logger
	overrides overrideSource
	pages     pageSource
	pageSize  int

	mu            sync.RWMutex
	backend       *lru.Cache[int, backendPage]
	listing       []domain.ListingEntry
	listingCount  int
	listingLoaded bool
	enriched      map[int]domain.Record
	names         map[int]map[string]string
	types         map[string]struct{}
	languages     map[string]struct{}
	done          bool
	revision      uint64

	subMu  sync.Mutex
	subs   map[int]chan uint64
	nextID int
}

// NewCatalog creates an empty Catalog. pages may be nil when backend paging
// is not used.
func NewCatalog(log *slog.Logger, overrides overrideSource, pages pageSource, opts Options) *Catalog {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if len(opts.Languages) == 0 {
		opts.Languages = DefaultLanguages
	}

	languages := make(map[string]struct{}, len(opts.Languages))
	for _, l := range opts.Languages {
		languages[l] = struct{}{}
	}

	backend, _ := lru.New[int, backendPage](maxBackendPages) // size is a positive constant

	return &Catalog{
		log:       log.With("service", "catalog"),
		backend:   backend,
		overrides: overrides,
		pages:     pages,
		pageSize:  opts.PageSize,
		enriched:  make(map[int]domain.Record),
		names:     make(map[int]map[string]string),
		types:     make(map[string]struct{}),
		languages: languages,
		subs:      make(map[int]chan uint64),
	}
}

// PageSize returns the configured page size.
func (c *Catalog) PageSize() int { return c.pageSize }

// backendPage is one page as returned by the backend. total is nil when
// the backend did not report it.
type backendPage struct {
	records []domain.Record
	total   *int
}

// SetPage stores backend page number page. Pages are kept independently so
// clients reading different pages do not evict each other's view.
func (c *Catalog) SetPage(page int, records []domain.Record, total *int) {
	bp := backendPage{records: make([]domain.Record, len(records))}
	if total != nil {
		t := *total
		bp.total = &t
	}

	c.mu.Lock()
	for i, r := range records {
		bp.records[i] = r.Clone()
		c.indexRecordLocked(r)
	}
	c.backend.Add(page, bp)
	rev := c.bumpLocked()
	c.mu.Unlock()

	c.log.Debug("backend page applied", slog.Int("page", page), slog.Int("records", len(records)))
	c.publish(rev)
}

// EnsurePage loads backend page n unless the full listing is already the
// base universe or n is already loaded.
func (c *Catalog) EnsurePage(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	c.mu.RLock()
	skip := c.listingLoaded || c.pages == nil || c.backend.Contains(n)
	c.mu.RUnlock()
	if skip {
		return nil
	}

	p, err := c.pages.FetchPage(ctx, n, c.pageSize)
	if err != nil {
		c.log.WarnContext(ctx, "backend page unavailable", slog.Int("page", n), slog.String("error", err.Error()))
		return err
	}
	c.SetPage(n, p.Records, p.Total)
	return nil
}

// SetListing installs the full listing as the base universe.
func (c *Catalog) SetListing(l *provider.Listing) {
	if l == nil {
		return
	}
	c.mu.Lock()
	c.listing = slices.Clone(l.Entries)
	c.listingCount = max(l.Count, len(l.Entries))
	c.listingLoaded = true
	rev := c.bumpLocked()
	c.mu.Unlock()

	c.log.Info("listing applied", slog.Int("entries", len(l.Entries)))
	c.publish(rev)
}

// ListingEntries returns a copy of the full listing.
func (c *Catalog) ListingEntries() []domain.ListingEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.listing)
}

// ApplyEnrichment merges a resolved batch. The batch is discarded and false
// returned when ctx is already cancelled; the check happens under the lock
// so a cancelled sequence never mutates state.
func (c *Catalog) ApplyEnrichment(ctx context.Context, b Batch) bool {
	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		return false
	}
	for _, r := range b.Details {
		if r.ID <= 0 {
			continue
		}
		c.enriched[r.ID] = r.Clone()
		c.indexRecordLocked(r)
	}
	for _, n := range b.Names {
		c.mergeNamesLocked(n.ID, n.Names)
	}
	rev := c.bumpLocked()
	c.mu.Unlock()

	c.publish(rev)
	return true
}

// SetEnrichmentDone marks the enriched universe as complete.
func (c *Catalog) SetEnrichmentDone() {
	c.mu.Lock()
	c.done = true
	rev := c.bumpLocked()
	c.mu.Unlock()
	c.publish(rev)
}

// Touch bumps the revision after an override change.
func (c *Catalog) Touch() {
	c.mu.Lock()
	rev := c.bumpLocked()
	c.mu.Unlock()
	c.publish(rev)
}

// Detail returns the best known full record for id (enriched detail or a
// record from a loaded backend page), without overrides applied.
func (c *Catalog) Detail(id int) (domain.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if r, ok := c.enriched[id]; ok {
		return r.Clone(), true
	}
	for _, bp := range c.backend.Values() {
		for _, r := range bp.records {
			if r.ID == id {
				return r.Clone(), true
			}
		}
	}
	return domain.Record{}, false
}

// Entry returns the listing entry for id.
func (c *Catalog) Entry(id int) (domain.ListingEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.listing {
		if e.ID == id {
			return e, true
		}
	}
	return domain.ListingEntry{}, false
}

// Names returns a copy of the localized names known for id.
func (c *Catalog) Names(id int) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	src := c.names[id]
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// DisplayName resolves rec's name in lang using the localized index.
func (c *Catalog) DisplayName(rec domain.Record, edited bool, lang string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return displayName(rec, edited, c.names[rec.ID], lang)
}

// Revision returns the current state revision.
func (c *Catalog) Revision() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

// Subscribe returns a channel that receives the latest revision after each
// change. Slow readers only see the most recent value. Call the returned
// func to unsubscribe.
func (c *Catalog) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)

	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
			close(ch)
		})
	}
}

func (c *Catalog) publish(rev uint64) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- rev:
		default:
			// Replace the stale pending value.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- rev:
			default:
			}
		}
	}
}

func (c *Catalog) bumpLocked() uint64 {
	c.revision++
	return c.revision
}

func (c *Catalog) indexRecordLocked(r domain.Record) {
	for _, t := range r.Types {
		c.types[t] = struct{}{}
	}
	c.mergeNamesLocked(r.ID, r.Names)
}

// mergeNamesLocked grows the localized index; known names are never removed.
func (c *Catalog) mergeNamesLocked(id int, names map[string]string) {
	if id <= 0 || len(names) == 0 {
		return
	}
	dst, ok := c.names[id]
	if !ok {
		dst = make(map[string]string, len(names))
		c.names[id] = dst
	}
	for lang, name := range names {
		if lang == "" || name == "" {
			continue
		}
		dst[lang] = name
		c.languages[lang] = struct{}{}
	}
}
