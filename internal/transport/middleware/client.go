package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/pokedex-backend/pkg/ctxutil"
)

// ClientIDHeader identifies a client across requests. It is optional and
// carries no authority; it only keys rate limiting and logs.
const ClientIDHeader = "X-Client-Id"

// ClientID stores a well-formed client id header in the context. Malformed
// ids are ignored.
func ClientID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(ClientIDHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctxutil.WithClientID(r.Context(), id)))
		})
	}
}
