// Package enrichment drives the batch enrichment sequence: fetch the full
// listing, then resolve details and localized names batch by batch with an
// owned cursor, pacing batches and honoring cancellation.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/provider"
	"github.com/heartmarshall/pokedex-backend/internal/service/catalog"
)

const (
	defaultBatchSize  = 50
	defaultBatchDelay = 200 * time.Millisecond
)

// ErrAlreadyRunning is returned by Run while another Run is active.
var ErrAlreadyRunning = errors.New("enrichment already running")

// State is a node of the enrichment state machine.
type State string

const (
	StateIdle           State = "idle"
	StateListingLoading State = "listing-loading"
	StateEnriching      State = "enriching"
	StateDone           State = "done"
	StateCancelled      State = "cancelled"
	StateFailed         State = "failed"
)

// Status is a point-in-time view of the runner.
type Status struct {
	State      State      `json:"state"`
	Cursor     int        `json:"cursor"`
	Total      int        `json:"total"`
	Enriched   int        `json:"enriched"`
	Batches    int        `json:"batches"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type listingSource interface {
	FetchFullListing(ctx context.Context) (*provider.Listing, error)
}

type detailSource interface {
	FetchDetailBatch(ctx context.Context, refs []string) []*domain.Record
	FetchLocalizedNameBatch(ctx context.Context, ids []int) []*provider.LocalizedNames
}

type catalogSink interface {
	SetListing(l *provider.Listing)
	ApplyEnrichment(ctx context.Context, b catalog.Batch) bool
	SetEnrichmentDone()
}

// Options configures a Runner. A zero BatchSize selects the default of 50;
// a zero BatchDelay disables pacing.
type Options struct {
	BatchSize  int
	BatchDelay time.Duration
}

// Runner owns the enrichment cursor. One Run may be active at a time.
type Runner struct {
	log     *slog.Logger
	listing listingSource
	details detailSource
	sink    catalogSink
	size    int
	delay   time.Duration
	clock   func() time.Time

	mu      sync.RWMutex
	running bool
	status  Status
}

// NewRunner creates a Runner in the idle state.
func NewRunner(log *slog.Logger, listing listingSource, details detailSource, sink catalogSink, opts Options) *Runner {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = defaultBatchDelay
	}
	return &Runner{
		log:     log.With("service", "enrichment"),
		listing: listing,
		details: details,
		sink:    sink,
		size:    opts.BatchSize,
		delay:   opts.BatchDelay,
		clock:   time.Now,
		status:  Status{State: StateIdle},
	}
}

// Status returns a snapshot of the runner state.
func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Run executes the full sequence and blocks until it is done, cancelled
// or failed. A cancelled run returns ctx.Err(); batch results that arrive
// after cancellation are discarded.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	started := r.clock()
	r.status = Status{State: StateListingLoading, StartedAt: &started}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	r.log.InfoContext(ctx, "enrichment started")

	listing, err := r.listing.FetchFullListing(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return r.cancelled(ctx)
		}
		r.finish(StateFailed, err)
		r.log.ErrorContext(ctx, "enrichment failed: listing unavailable", slog.String("error", err.Error()))
		return fmt.Errorf("enrichment: load listing: %w", err)
	}
	if ctx.Err() != nil {
		return r.cancelled(ctx)
	}

	r.sink.SetListing(listing)
	entries := listing.Entries
	r.update(func(s *Status) {
		s.State = StateEnriching
		s.Total = len(entries)
	})

	for cursor := 0; cursor < len(entries); {
		if ctx.Err() != nil {
			return r.cancelled(ctx)
		}

		end := min(cursor+r.size, len(entries))
		resolved := r.runBatch(ctx, entries[cursor:end])
		if resolved < 0 {
			return r.cancelled(ctx)
		}

		cursor = end
		r.update(func(s *Status) {
			s.Cursor = cursor
			s.Enriched += resolved
			s.Batches++
		})

		if cursor < len(entries) && !r.wait(ctx) {
			return r.cancelled(ctx)
		}
	}

	r.sink.SetEnrichmentDone()
	r.finish(StateDone, nil)
	st := r.Status()
	r.log.InfoContext(ctx, "enrichment done",
		slog.Int("total", st.Total),
		slog.Int("enriched", st.Enriched),
		slog.Int("batches", st.Batches),
	)
	return nil
}

// runBatch resolves details, then localized names for the resolved ids, and
// applies both together. It returns the number of resolved details, or -1
// when the batch was discarded because ctx was cancelled.
func (r *Runner) runBatch(ctx context.Context, entries []domain.ListingEntry) int {
	refs := make([]string, len(entries))
	for i, e := range entries {
		refs[i] = e.Reference
	}

	details := r.details.FetchDetailBatch(ctx, refs)

	batch := catalog.Batch{Details: make([]domain.Record, 0, len(details))}
	ids := make([]int, 0, len(details))
	for i, d := range details {
		if d == nil {
			continue
		}
		rec := *d
		if rec.ID <= 0 {
			rec.ID = entries[i].ID
		}
		if rec.Reference == "" {
			rec.Reference = entries[i].Reference
		}
		batch.Details = append(batch.Details, rec)
		ids = append(ids, rec.ID)
	}

	if len(ids) > 0 {
		for _, n := range r.details.FetchLocalizedNameBatch(ctx, ids) {
			if n != nil {
				batch.Names = append(batch.Names, *n)
			}
		}
	}

	if !r.sink.ApplyEnrichment(ctx, batch) {
		return -1
	}

	if failed := len(entries) - len(batch.Details); failed > 0 {
		r.log.WarnContext(ctx, "batch partially resolved",
			slog.Int("resolved", len(batch.Details)),
			slog.Int("failed", failed),
		)
	}
	return len(batch.Details)
}

// wait paces batches; false means ctx was cancelled.
func (r *Runner) wait(ctx context.Context) bool {
	if r.delay == 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(r.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (r *Runner) cancelled(ctx context.Context) error {
	r.finish(StateCancelled, nil)
	r.log.InfoContext(ctx, "enrichment cancelled", slog.Int("cursor", r.Status().Cursor))
	return ctx.Err()
}

func (r *Runner) finish(state State, err error) {
	now := r.clock()
	r.update(func(s *Status) {
		s.State = state
		s.FinishedAt = &now
		if err != nil {
			s.Error = err.Error()
		}
	})
}

func (r *Runner) update(fn func(s *Status)) {
	r.mu.Lock()
	fn(&r.status)
	r.mu.Unlock()
}
