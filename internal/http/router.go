// Package http wires the chi router for the API binary.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"adforge/internal/http/handlers"
	"adforge/internal/middleware"
)

// RouterOptions bundles router configuration.
type RouterOptions struct {
	App            *handlers.App
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
	RateLimit      int
	StaticDir      string
}

// NewRouter builds the HTTP surface: the three orchestration entry points,
// the asset-library collaborator endpoints, and static serving for mirrored
// assets.
func NewRouter(opts RouterOptions) http.Handler {
	app := opts.App
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.I18N(opts.DefaultLocale, opts.CountryLookup))

	r.Get("/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(opts.RateLimit, time.Minute)).
			Post("/generate", app.Generate)

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", app.ListAssets)
			r.Get("/download", app.DownloadAssets)
			r.Post("/recover", app.RecoverAssets)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.GetAsset)
				r.Delete("/", app.DeleteAsset)
				r.Post("/favorite", app.FavoriteAsset)
				r.Post("/reconcile", app.ReconcileAsset)
			})
		})
	})

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
			fs.ServeHTTP(w, req)
		})
	}

	return r
}
