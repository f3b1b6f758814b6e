// Package pokeapi fetches the full listing, per-record detail and localized
// species names from PokeAPI.
package pokeapi

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/pokedex-backend/internal/adapter/provider/httpx"
	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/provider"
)

const (
	defaultBaseURL      = "https://pokeapi.co/api/v2"
	defaultListingLimit = 200000
	// maxInFlight bounds concurrent requests within one batch.
	maxInFlight = 16
)

// Options configures a Provider. Zero values select defaults.
type Options struct {
	BaseURL        string
	ListingLimit   int
	RequestTimeout time.Duration
	// ItemTimeout bounds each fetch inside a batch.
	ItemTimeout time.Duration
	MaxRetries  uint64
}

// Provider talks to PokeAPI.
type Provider struct {
	baseURL      string
	listingLimit int
	itemTimeout  time.Duration
	client       *httpx.Client
	log          *slog.Logger
}

// NewProvider creates a Provider.
func NewProvider(logger *slog.Logger, opts Options) *Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.ListingLimit <= 0 {
		opts.ListingLimit = defaultListingLimit
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.ItemTimeout <= 0 {
		opts.ItemTimeout = opts.RequestTimeout
	}
	log := logger.With("adapter", "pokeapi")
	return &Provider{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		listingLimit: opts.ListingLimit,
		itemTimeout:  opts.ItemTimeout,
		client:       httpx.New(log, opts.RequestTimeout, opts.MaxRetries),
		log:          log,
	}
}

// withInitialBackoff shortens the retry interval (for testing).
func (p *Provider) withInitialBackoff(d time.Duration) *Provider {
	p.client.WithInitialInterval(d)
	return p
}

// ReferenceFor returns the detail URL for id.
func (p *Provider) ReferenceFor(id int) string {
	return p.baseURL + "/pokemon/" + strconv.Itoa(id) + "/"
}

// FetchFullListing fetches every addressable record name and reference in
// one request.
func (p *Provider) FetchFullListing(ctx context.Context) (*provider.Listing, error) {
	reqURL := fmt.Sprintf("%s/pokemon?limit=%d&offset=0", p.baseURL, p.listingLimit)

	var body apiListing
	found, err := p.client.GetJSONRetry(ctx, reqURL, &body)
	if err != nil {
		p.log.ErrorContext(ctx, "listing fetch failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("pokeapi: fetch listing: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("pokeapi: fetch listing: %w", domain.ErrNotFound)
	}

	listing := mapListing(body)
	p.log.InfoContext(ctx, "listing fetched",
		slog.Int("entries", len(listing.Entries)),
		slog.Int("count", listing.Count),
	)
	return listing, nil
}

// FetchDetail fetches one record by its detail reference.
// Returns nil, nil if the record does not exist (HTTP 404).
func (p *Provider) FetchDetail(ctx context.Context, ref string) (*domain.Record, error) {
	var body apiPokemon
	found, err := p.client.GetJSON(ctx, ref, &body)
	if err != nil {
		return nil, fmt.Errorf("pokeapi: fetch detail %s: %w", ref, err)
	}
	if !found {
		return nil, nil
	}
	rec := mapPokemon(body, ref)
	return &rec, nil
}

// FetchDetailByID fetches one record by id.
func (p *Provider) FetchDetailByID(ctx context.Context, id int) (*domain.Record, error) {
	return p.FetchDetail(ctx, p.ReferenceFor(id))
}

// FetchDetailBatch resolves refs concurrently. The result is aligned with
// refs; a failed or missing item leaves nil in its slot and never fails
// the batch.
func (p *Provider) FetchDetailBatch(ctx context.Context, refs []string) []*domain.Record {
	out := make([]*domain.Record, len(refs))

	var g errgroup.Group
	g.SetLimit(maxInFlight)
	for i, ref := range refs {
		g.Go(func() error {
			itemCtx, cancel := context.WithTimeout(ctx, p.itemTimeout)
			defer cancel()

			rec, err := p.FetchDetail(itemCtx, ref)
			if err != nil {
				p.log.WarnContext(ctx, "detail fetch failed", slog.String("ref", ref), slog.String("error", err.Error()))
				return nil
			}
			out[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// FetchLocalizedNames fetches the species name map for id.
// Returns nil, nil if the species does not exist.
func (p *Provider) FetchLocalizedNames(ctx context.Context, id int) (*provider.LocalizedNames, error) {
	reqURL := p.baseURL + "/pokemon-species/" + strconv.Itoa(id) + "/"

	var body apiSpecies
	found, err := p.client.GetJSON(ctx, reqURL, &body)
	if err != nil {
		return nil, fmt.Errorf("pokeapi: fetch species %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return mapSpecies(body, id), nil
}

// FetchLocalizedNameBatch resolves species names for ids concurrently,
// aligned with ids; failures leave nil.
func (p *Provider) FetchLocalizedNameBatch(ctx context.Context, ids []int) []*provider.LocalizedNames {
	out := make([]*provider.LocalizedNames, len(ids))

	var g errgroup.Group
	g.SetLimit(maxInFlight)
	for i, id := range ids {
		g.Go(func() error {
			itemCtx, cancel := context.WithTimeout(ctx, p.itemTimeout)
			defer cancel()

			names, err := p.FetchLocalizedNames(itemCtx, id)
			if err != nil {
				p.log.WarnContext(ctx, "species fetch failed", slog.Int("id", id), slog.String("error", err.Error()))
				return nil
			}
			out[i] = names
			return nil
		})
	}
	_ = g.Wait()

	return out
}
