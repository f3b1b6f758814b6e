package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/pokedex-backend/pkg/ctxutil"
)

func TestClientID(t *testing.T) {
	t.Parallel()

	valid := uuid.New()
	tests := []struct {
		name   string
		header string
		wantOK bool
	}{
		{name: "valid", header: valid.String(), wantOK: true},
		{name: "malformed", header: "not-a-uuid"},
		{name: "absent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ok bool
			handler := ClientID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, ok = ctxutil.ClientIDFromCtx(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(ClientIDHeader, tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
