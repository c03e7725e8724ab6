package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/kartikshukla17/mashoor-landing-project/internal/locale"
	"github.com/kartikshukla17/mashoor-landing-project/pkg/kit"
)

// Server exposes the accessor as a JSON API.
type Server struct {
	Catalog *Accessor
	Source  Source
	Log     *zap.Logger
	Tracer  trace.Tracer
}

func (s *Server) tracer() trace.Tracer {
	if s.Tracer == nil {
		return noop.NewTracerProvider().Tracer("catalog")
	}
	return s.Tracer
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		s.Mount(r)
	})

	return r
}

// Mount registers the catalog endpoints on r, so the storefront can serve
// them next to its own API.
func (s *Server) Mount(r chi.Router) {
	r.Get("/products", s.listProducts)
	r.Get("/products/{slug}", s.getProduct)
	r.Get("/categories", s.listCategories)
	r.Get("/dataset", s.dataset)
}

// Ready answers 200 when the catalog source is reachable.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if s.Source == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Source.Ping(ctx); err != nil {
		if s.Log != nil {
			s.Log.Warn("readyz failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func requestLocale(r *http.Request) string {
	return locale.Normalize(r.URL.Query().Get("locale"))
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r)

	_, span := s.tracer().Start(r.Context(), "catalog.ListProducts")
	defer span.End()

	products := s.Catalog.ListProducts(loc)
	span.SetAttributes(
		attribute.String("catalog.locale", loc),
		attribute.Int("catalog.count", len(products)),
	)
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	loc := requestLocale(r)

	_, span := s.tracer().Start(r.Context(), "catalog.GetProductBySlug")
	defer span.End()
	span.SetAttributes(
		attribute.String("catalog.slug", slug),
		attribute.String("catalog.locale", loc),
	)

	p, ok := s.Catalog.GetProductBySlug(slug, loc)
	if !ok {
		span.SetStatus(codes.Error, "product not found")
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"slug": slug})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r)

	_, span := s.tracer().Start(r.Context(), "catalog.ListCategories")
	defer span.End()

	categories := s.Catalog.ListCategories(loc)
	span.SetAttributes(
		attribute.String("catalog.locale", loc),
		attribute.Int("catalog.count", len(categories)),
	)
	kit.WriteJSON(w, http.StatusOK, categories)
}

func (s *Server) dataset(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.Dataset())
}
