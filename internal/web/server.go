// Package web renders the storefront pages and serves the favorites API.
package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
	"github.com/kartikshukla17/mashoor-landing-project/internal/favorites"
	"github.com/kartikshukla17/mashoor-landing-project/internal/i18n"
	"github.com/kartikshukla17/mashoor-landing-project/internal/locale"
	"github.com/kartikshukla17/mashoor-landing-project/internal/session"
)

type Server struct {
	Catalog   *catalog.Accessor
	Favorites *favorites.Registry
	I18n      *i18n.Bundle
	Renderer  *Renderer
	SiteURL   string
	Log       *zap.Logger
}

// store returns the favorites of the request's session.
func (s *Server) store(r *http.Request) *favorites.Store {
	sid, _ := session.FromContext(r.Context())
	return s.Favorites.Get(r.Context(), sid)
}

func requestLocale(r *http.Request) string {
	return locale.Normalize(chi.URLParam(r, "locale"))
}

// pathLocale reads the locale from the first path segment, for handlers
// that run outside the /{locale} routes.
func pathLocale(r *http.Request) string {
	first, _, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if locale.IsSupported(first) {
		return first
	}
	return locale.FromRequest(r)
}

func (s *Server) page(r *http.Request, loc string, fav *favorites.Store) Page {
	p := Page{
		Locale:     loc,
		Path:       r.URL.Path,
		SwitchPath: switchPath(r.URL.Path, otherLocale(loc)),
		Canonical:  strings.TrimRight(s.SiteURL, "/") + switchPath(r.URL.Path, loc),
		bundle:     s.I18n,
	}
	if fav != nil {
		p.FavCount = fav.Count()
	}
	return p
}

// switchPath swaps the leading locale segment of path for to. It also
// builds canonical URLs, so /fr/... points at the en page it renders.
func switchPath(path, to string) string {
	trimmed := strings.TrimPrefix(path, "/")
	first, rest, found := strings.Cut(trimmed, "/")
	if len(first) != 2 || !found {
		return "/" + to
	}
	return "/" + to + "/" + rest
}

// safeReturn accepts only same-site absolute paths.
func safeReturn(ret, loc string) string {
	fallback := "/" + loc
	if ret == "" || !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") || strings.HasPrefix(ret, "/\\") {
		return fallback
	}
	u, err := url.Parse(ret)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return u.RequestURI()
}

func (s *Server) cards(loc string, products []catalog.ProductView, fav *favorites.Store) []Card {
	out := make([]Card, len(products))
	for i, p := range products {
		out[i] = Card{
			Product:  p,
			Price:    FormatPrice(loc, p.Price, p.Currency),
			Favorite: fav.Contains(p.ID),
		}
	}
	return out
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := s.Renderer.Render(w, status, name, data); err != nil {
		s.Log.Error("render failed", zap.String("template", name), zap.Error(err))
		s.serverError(w, r)
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	loc := pathLocale(r)
	data := ErrorData{
		Page:     s.page(r, loc, nil),
		TitleKey: "not_found_title",
		TextKey:  "not_found_text",
	}
	data.Title = data.T("not_found_title")
	s.render(w, r, http.StatusNotFound, "error", data)
}

// serverError renders the 500 page and never recurses into render.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request) {
	loc := pathLocale(r)
	data := ErrorData{
		Page:     s.page(r, loc, nil),
		TitleKey: "error_title",
		TextKey:  "error_text",
	}
	data.Title = data.T("error_title")
	if err := s.Renderer.Render(w, http.StatusInternalServerError, "error", data); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
