package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestWithClientID_And_ClientIDFromCtx(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	ctx := WithClientID(context.Background(), id)

	got, ok := ClientIDFromCtx(ctx)
	if !ok {
		t.Fatal("expected ok=true for valid UUID")
	}
	if got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
}

func TestClientIDFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	got, ok := ClientIDFromCtx(context.Background())
	if ok {
		t.Fatal("expected ok=false for empty context")
	}
	if got != uuid.Nil {
		t.Fatalf("expected uuid.Nil, got %s", got)
	}
}

func TestClientIDFromCtx_NilUUID(t *testing.T) {
	t.Parallel()

	ctx := WithClientID(context.Background(), uuid.Nil)
	if _, ok := ClientIDFromCtx(ctx); ok {
		t.Fatal("expected ok=false for nil UUID")
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
	ctx := WithRequestID(context.Background(), "req-1")
	if got := RequestIDFromCtx(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
}

func TestLanguageFromCtx(t *testing.T) {
	t.Parallel()

	if got := LanguageFromCtx(context.Background(), "en"); got != "en" {
		t.Fatalf("expected fallback en, got %q", got)
	}
	ctx := WithLanguage(context.Background(), "fr")
	if got := LanguageFromCtx(ctx, "en"); got != "fr" {
		t.Fatalf("expected fr, got %q", got)
	}
}
