package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
	"github.com/kartikshukla17/mashoor-landing-project/internal/locale"
)

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/"+locale.FromRequest(r), http.StatusFound)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r)
	fav := s.store(r)

	data := HomeData{
		Page:       s.page(r, loc, fav),
		Cards:      s.cards(loc, s.Catalog.ListProducts(loc), fav),
		Categories: s.Catalog.ListCategories(loc),
	}
	data.Title = data.T("home_title")
	data.Description = data.T("home_description")

	s.render(w, r, http.StatusOK, "home", data)
}

func (s *Server) product(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r)
	slug := chi.URLParam(r, "slug")

	p, ok := s.Catalog.GetProductBySlug(slug, loc)
	if !ok {
		s.notFound(w, r)
		return
	}

	fav := s.store(r)
	ld, err := productJSONLD(p)
	if err != nil {
		s.Log.Error("product json-ld", zap.String("slug", slug), zap.Error(err))
		s.serverError(w, r)
		return
	}

	data := ProductData{
		Page: s.page(r, loc, fav),
		Card: s.cards(loc, []catalog.ProductView{p}, fav)[0],
	}
	data.Title = p.Name
	data.Description = p.Description
	data.JSONLD = ld
	data.Meta = &Meta{Title: p.Name, Description: p.Description}
	if p.HasImage {
		data.Meta.Image = p.Image
	}

	s.render(w, r, http.StatusOK, "product", data)
}

// favoritesPage shows the session's favorites in insertion order. Products
// still in the catalog are shown in the current locale; the rest use the
// stored snapshot.
func (s *Server) favoritesPage(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r)
	fav := s.store(r)

	items := fav.List()
	for i, snap := range items {
		if p, ok := s.Catalog.GetProductBySlug(snap.Slug, loc); ok && p.ID == snap.ID {
			items[i] = p
		}
	}

	data := FavoritesData{
		Page:  s.page(r, loc, fav),
		Cards: s.cards(loc, items, fav),
	}
	data.Title = data.T("favorites_title")

	s.render(w, r, http.StatusOK, "favorites", data)
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	p, ok := s.Catalog.GetProductBySlug(r.PostForm.Get("slug"), loc)
	if !ok {
		s.notFound(w, r)
		return
	}
	s.store(r).Toggle(p)

	http.Redirect(w, r, safeReturn(r.PostForm.Get("return"), loc), http.StatusSeeOther)
}

func (s *Server) clearFavorites(w http.ResponseWriter, r *http.Request) {
	s.store(r).Clear()
	http.Redirect(w, r, "/"+requestLocale(r)+"/favorites", http.StatusSeeOther)
}
