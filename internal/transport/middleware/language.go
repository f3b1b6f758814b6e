package middleware

import (
	"net/http"

	"golang.org/x/text/language"

	"github.com/heartmarshall/pokedex-backend/pkg/ctxutil"
)

// Language negotiates the display language from Accept-Language against
// supported. The first supported language is the fallback.
func Language(supported []string) Middleware {
	tags := make([]language.Tag, 0, len(supported))
	codes := make([]string, 0, len(supported))
	for _, s := range supported {
		tag, err := language.Parse(s)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		codes = append(codes, s)
	}
	matcher := language.NewMatcher(tags)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accept := r.Header.Get("Accept-Language")
			if accept == "" || len(codes) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			_, idx := language.MatchStrings(matcher, accept)
			ctx := ctxutil.WithLanguage(r.Context(), codes[idx])
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
