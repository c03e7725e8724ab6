package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
	"github.com/kartikshukla17/mashoor-landing-project/internal/favorites"
	"github.com/kartikshukla17/mashoor-landing-project/internal/seo"
	"github.com/kartikshukla17/mashoor-landing-project/internal/session"
	"github.com/kartikshukla17/mashoor-landing-project/internal/telemetry"
	"github.com/kartikshukla17/mashoor-landing-project/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled   bool
	MetricsTokenHash string

	Sessions   *session.Manager
	Limiter    *kit.IPRateLimiter
	CatalogAPI *catalog.Server
	Tracing    bool
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, s, deps)
	setupMetrics(r, s, deps)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	if deps.CatalogAPI != nil {
		r.Get("/readyz", deps.CatalogAPI.Ready)
	}

	r.Handle("/static/*", staticHandler())

	sh := &seo.Handler{SiteURL: s.SiteURL, Products: s.Catalog, Log: s.Log}
	r.Get("/sitemap.xml", sh.Sitemap)
	r.Get("/robots.txt", sh.Robots)

	limit := func(next http.Handler) http.Handler { return next }
	if deps.Limiter != nil {
		limit = deps.Limiter.Middleware
	}

	r.Route("/api/v1", func(r chi.Router) {
		if deps.CatalogAPI != nil {
			deps.CatalogAPI.Mount(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(deps.Sessions.Middleware)
			r.Get("/favorites", s.apiListFavorites)
			r.With(limit).Post("/favorites", s.apiAddFavorite)
			r.With(limit).Delete("/favorites", s.apiClearFavorites)
			r.Get("/favorites/{id}", s.apiGetFavorite)
			r.With(limit).Delete("/favorites/{id}", s.apiRemoveFavorite)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.Sessions.Middleware)

		r.Get("/", s.root)
		r.Route("/{locale:[a-z]{2}}", func(r chi.Router) {
			r.Get("/", s.home)
			r.Get("/product/{slug}", s.product)
			r.Get("/favorites", s.favoritesPage)
			r.With(limit).Post("/favorites/toggle", s.toggle)
			r.With(limit).Post("/favorites/clear", s.clearFavorites)
		})
	})

	r.NotFound(s.notFound)
	return r
}

func setupMiddleware(r *chi.Mux, s *Server, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(kit.Recoverer(deps.Log, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
			return
		}
		s.serverError(w, r)
	}))
	r.Use(kit.Logging(deps.Log))
	r.Use(kit.SecureHeaders)
	r.Use(chimw.StripSlashes)
	if deps.Tracing {
		r.Use(telemetry.RouteName)
	}
}

func setupMetrics(r *chi.Mux, s *Server, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	changes := NewFavoriteMetrics(deps.Registry)
	s.Favorites.Subscribe(changes.Observe)

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsTokenHash)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

// FavoriteMetrics counts favorites changes by kind.
type FavoriteMetrics struct {
	changes *prometheus.CounterVec
}

func NewFavoriteMetrics(reg prometheus.Registerer) *FavoriteMetrics {
	m := &FavoriteMetrics{
		changes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mashur",
				Name:      "favorite_changes_total",
				Help:      "Favorites mutations by kind",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.changes)
	return m
}

func (m *FavoriteMetrics) Observe(_ string, ch favorites.Change) {
	m.changes.WithLabelValues(string(ch.Kind)).Inc()
}

// SweepEvery runs limiter.Sweep on a ticker until stop is closed.
func SweepEvery(limiter *kit.IPRateLimiter, every time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			limiter.Sweep()
		}
	}
}
