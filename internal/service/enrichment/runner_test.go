package enrichment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/provider"
	"github.com/heartmarshall/pokedex-backend/internal/service/catalog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type emptyOverrides struct{}

func (emptyOverrides) Snapshot() domain.OverrideState { return domain.EmptyOverrideState() }

type mockListing struct {
	fetchFn func(ctx context.Context) (*provider.Listing, error)
}

func (m *mockListing) FetchFullListing(ctx context.Context) (*provider.Listing, error) {
	return m.fetchFn(ctx)
}

// fakeDetails resolves every reference to a record whose id is parsed from
// it. Batch number blockOn waits for release after signalling entered.
type fakeDetails struct {
	mu       sync.Mutex
	batches  [][]string
	failRefs map[string]bool
	blockOn  int
	entered  chan struct{}
	release  chan struct{}
}

func (f *fakeDetails) FetchDetailBatch(ctx context.Context, refs []string) []*domain.Record {
	f.mu.Lock()
	f.batches = append(f.batches, refs)
	n := len(f.batches)
	f.mu.Unlock()

	if f.blockOn == n {
		close(f.entered)
		<-f.release
	}

	out := make([]*domain.Record, len(refs))
	for i, ref := range refs {
		if f.failRefs[ref] {
			continue
		}
		id, err := domain.IDFromReference(ref)
		if err != nil {
			continue
		}
		out[i] = &domain.Record{ID: id, Name: fmt.Sprintf("mon-%d", id), Stats: []domain.Stat{{Name: domain.StatHP, Value: id}}}
	}
	return out
}

func (f *fakeDetails) FetchLocalizedNameBatch(_ context.Context, ids []int) []*provider.LocalizedNames {
	out := make([]*provider.LocalizedNames, len(ids))
	for i, id := range ids {
		out[i] = &provider.LocalizedNames{ID: id, Names: map[string]string{"fr": fmt.Sprintf("fr-%d", id)}}
	}
	return out
}

func (f *fakeDetails) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func testListing(n int) *provider.Listing {
	l := &provider.Listing{Count: n}
	for i := 1; i <= n; i++ {
		l.Entries = append(l.Entries, domain.ListingEntry{
			ID:        i,
			Name:      fmt.Sprintf("mon-%d", i),
			Reference: fmt.Sprintf("https://pokeapi.test/pokemon/%d/", i),
		})
	}
	return l
}

func newHarness(n int, details *fakeDetails, opts Options) (*Runner, *catalog.Catalog) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat := catalog.NewCatalog(logger, emptyOverrides{}, nil, catalog.Options{PageSize: 20})
	listing := &mockListing{fetchFn: func(context.Context) (*provider.Listing, error) {
		return testListing(n), nil
	}}
	return NewRunner(logger, listing, details, cat, opts), cat
}

func TestRunner_Run_CompletesAllBatches(t *testing.T) {
	details := &fakeDetails{failRefs: map[string]bool{"https://pokeapi.test/pokemon/7/": true}}
	r, cat := newHarness(120, details, Options{BatchSize: 50, BatchDelay: time.Millisecond})

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 3, details.batchCount())
	st := r.Status()
	assert.Equal(t, StateDone, st.State)
	assert.Equal(t, 120, st.Cursor)
	assert.Equal(t, 120, st.Total)
	assert.Equal(t, 119, st.Enriched)
	assert.Equal(t, 3, st.Batches)
	assert.NotNil(t, st.FinishedAt)

	v := cat.Query(domain.ViewQuery{})
	assert.Equal(t, 120, v.BestID)
	assert.True(t, v.BestFinal)
	assert.Equal(t, "fr-3", cat.Names(3)["fr"])

	_, ok := cat.Detail(7)
	assert.False(t, ok, "failed item falls back to listing-only shape")
}

func TestRunner_Run_CancelDiscardsInFlightBatch(t *testing.T) {
	details := &fakeDetails{
		blockOn: 2,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	r, cat := newHarness(100, details, Options{BatchSize: 50})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	<-details.entered
	cancel()
	close(details.release)

	err := <-errCh
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, StateCancelled, r.Status().State)
	assert.Equal(t, 50, r.Status().Cursor)

	_, ok := cat.Detail(50)
	assert.True(t, ok, "first batch was applied")
	_, ok = cat.Detail(51)
	assert.False(t, ok, "cancelled batch was discarded")
	assert.Empty(t, cat.Names(51))
}

func TestRunner_Run_CancelDuringDelay(t *testing.T) {
	details := &fakeDetails{}
	r, _ := newHarness(100, details, Options{BatchSize: 50, BatchDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return r.Status().Batches == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	assert.Equal(t, 1, details.batchCount())
	assert.Equal(t, StateCancelled, r.Status().State)
}

func TestRunner_Run_ListingFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat := catalog.NewCatalog(logger, emptyOverrides{}, nil, catalog.Options{})
	listing := &mockListing{fetchFn: func(context.Context) (*provider.Listing, error) {
		return nil, domain.ErrNetwork
	}}
	r := NewRunner(logger, listing, &fakeDetails{}, cat, Options{})

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNetwork))

	st := r.Status()
	assert.Equal(t, StateFailed, st.State)
	assert.NotEmpty(t, st.Error)
}

func TestRunner_Run_RejectsConcurrentRun(t *testing.T) {
	details := &fakeDetails{
		blockOn: 1,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	r, _ := newHarness(10, details, Options{})

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(context.Background()) }()
	<-details.entered

	assert.ErrorIs(t, r.Run(context.Background()), ErrAlreadyRunning)

	close(details.release)
	require.NoError(t, <-errCh)
}

func TestRunner_Status_Idle(t *testing.T) {
	r, _ := newHarness(0, &fakeDetails{}, Options{})
	assert.Equal(t, StateIdle, r.Status().State)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, StateDone, r.Status().State)
}
