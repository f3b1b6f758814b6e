package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
)

func newTestClient(retries uint64) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, 2*time.Second, retries).WithInitialInterval(time.Millisecond)
}

type payload struct {
	Value string `json:"value"`
}

func TestClient_GetJSON_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":"ok"}`))
	}))
	defer srv.Close()

	var got payload
	found, err := newTestClient(0).GetJSON(context.Background(), srv.URL, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ok", got.Value)
}

func TestClient_GetJSON_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var got payload
	found, err := newTestClient(0).GetJSON(context.Background(), srv.URL, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_GetJSONRetry_RecoversAfter5xx(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"value":"late"}`))
	}))
	defer srv.Close()

	var got payload
	found, err := newTestClient(3).GetJSONRetry(context.Background(), srv.URL, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "late", got.Value)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GetJSONRetry_GivesUp(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var got payload
	_, err := newTestClient(2).GetJSONRetry(context.Background(), srv.URL, &got)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GetJSONRetry_NoRetryOn4xx(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	var got payload
	_, err := newTestClient(3).GetJSONRetry(context.Background(), srv.URL, &got)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_GetJSON_MalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	var got payload
	_, err := newTestClient(0).GetJSON(context.Background(), srv.URL, &got)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}
