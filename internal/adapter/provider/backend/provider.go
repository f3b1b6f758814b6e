// Package backend fetches paginated Pokémon documents from the document backend.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/pokedex-backend/internal/adapter/provider/httpx"
	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/provider"
)

const defaultBaseURL = "http://localhost:3000"

// Provider fetches record pages from the backend.
type Provider struct {
	baseURL string
	client  *httpx.Client
	log     *slog.Logger
}

// NewProvider creates a Provider. An empty baseURL selects the local default.
func NewProvider(logger *slog.Logger, baseURL string, timeout time.Duration, maxRetries uint64) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	log := logger.With("adapter", "backend")
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpx.New(log, timeout, maxRetries),
		log:     log,
	}
}

// withInitialBackoff shortens the retry interval (for testing).
func (p *Provider) withInitialBackoff(d time.Duration) *Provider {
	p.client.WithInitialInterval(d)
	return p
}

// FetchPage fetches one page of records. Documents without a usable id are
// skipped. A 404 yields an empty page with a known total of zero.
func (p *Provider) FetchPage(ctx context.Context, page, limit int) (*provider.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	reqURL := p.baseURL + "/pokemons?" + q.Encode()

	var body apiPage
	found, err := p.client.GetJSONRetry(ctx, reqURL, &body)
	if err != nil {
		p.log.ErrorContext(ctx, "backend page fetch failed",
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("backend: fetch page %d: %w", page, err)
	}

	result := &provider.Page{Number: page}
	if !found {
		zero := 0
		result.Total = &zero
		return result, nil
	}

	result.Records = make([]domain.Record, 0, len(body.Results))
	skipped := 0
	for _, doc := range body.Results {
		rec, ok := mapDocument(doc)
		if !ok {
			skipped++
			continue
		}
		result.Records = append(result.Records, rec)
	}
	result.Total = body.TotalCount

	p.log.DebugContext(ctx, "backend page fetched",
		slog.Int("page", page),
		slog.Int("records", len(result.Records)),
		slog.Int("skipped", skipped),
	)

	return result, nil
}
