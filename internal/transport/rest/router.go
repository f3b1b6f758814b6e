package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/pokedex-backend/internal/config"
	"github.com/heartmarshall/pokedex-backend/internal/transport/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health  *HealthHandler
	Pokemon *PokemonHandler
	Meta    *MetaHandler
	Events  *EventsHandler
}

// RouterConfig carries the transport settings.
type RouterConfig struct {
	CORS            config.CORSConfig
	WritesPerMinute int
	Languages       []string
}

// NewRouter mounts the health probes and the v1 API on a chi router.
func NewRouter(h Handlers, limiter *middleware.RateLimiter, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.ClientID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	))

	r.Get("/health", h.Health.Health)
	r.Get("/live", h.Health.Live)
	r.Get("/ready", h.Health.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Language(cfg.Languages))
		if limiter != nil {
			r.Use(limiter.LimitWrites(cfg.WritesPerMinute))
		}

		r.Route("/pokemon", func(r chi.Router) {
			r.Get("/", h.Pokemon.List)
			r.Post("/", h.Pokemon.Create)
			r.Get("/lookup", h.Pokemon.Lookup)
			r.Get("/{id}", h.Pokemon.Get)
			r.Patch("/{id}", h.Pokemon.Edit)
			r.Delete("/{id}", h.Pokemon.Delete)
			r.Post("/{id}/restore", h.Pokemon.Restore)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", h.Pokemon.Favorites)
			r.Post("/{id}", h.Pokemon.ToggleFavorite)
		})

		r.Get("/enrichment", h.Meta.Enrichment)
		r.Get("/facets", h.Meta.Facets)
		r.Get("/events", h.Events.Stream)
	})

	return r
}
