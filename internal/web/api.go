package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
	"github.com/kartikshukla17/mashoor-landing-project/internal/locale"
	"github.com/kartikshukla17/mashoor-landing-project/pkg/kit"
)

type favoritesResponse struct {
	Count int                   `json:"count"`
	Items []catalog.ProductView `json:"items"`
}

type addFavoriteRequest struct {
	Slug   string `json:"slug"`
	Locale string `json:"locale"`
}

func (s *Server) apiListFavorites(w http.ResponseWriter, r *http.Request) {
	items := s.store(r).List()
	kit.WriteJSON(w, http.StatusOK, favoritesResponse{Count: len(items), Items: items})
}

func (s *Server) apiAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req addFavoriteRequest
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			kit.WriteError(w, r, http.StatusRequestEntityTooLarge, "body too large", nil)
			return
		}
		kit.WriteError(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if req.Slug == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "slug required", nil)
		return
	}

	p, ok := s.Catalog.GetProductBySlug(req.Slug, locale.Normalize(req.Locale))
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"slug": req.Slug})
		return
	}

	s.store(r).Add(p)
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) apiGetFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok := s.store(r).Get(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

// apiRemoveFavorite is idempotent: removing an absent id is a 204 too.
func (s *Server) apiRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	s.store(r).Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// apiClearFavorites resets the session's favorites.
func (s *Server) apiClearFavorites(w http.ResponseWriter, r *http.Request) {
	s.store(r).Clear()
	w.WriteHeader(http.StatusNoContent)
}
