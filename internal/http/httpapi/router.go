package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ecomagent/internal/http/handlers"
	"ecomagent/internal/infra"
	"ecomagent/internal/middleware"
	"ecomagent/internal/ratelimit"
)

// Options carries the cross-cutting pieces the router wires around the
// handlers. Zero values disable the optional parts.
type Options struct {
	Logger         infra.Logger
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
	Limiter        ratelimit.Limiter
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/", app.Health)
	r.Get("/openapi.json", app.OpenAPIJSON)
	r.Get("/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(middleware.RateLimit(opts.Limiter, opts.Logger))
		}
		r.Post("/generate_description", app.GenerateDescription)
		r.Post("/generate_tags", app.GenerateTags)
		r.Post("/generate_marketing_content", app.GenerateMarketingContent)
	})

	return r
}
