package catalog

import (
	"errors"
	"fmt"
)

// PlaceholderImage marks a product that ships without a picture.
const PlaceholderImage = "<url>"

var (
	ErrDuplicateID   = errors.New("duplicate product id")
	ErrDuplicateSlug = errors.New("duplicate product slug")
	ErrEmptyKey      = errors.New("empty id or slug")
)

// Localized maps a locale code to text.
type Localized map[string]string

type ProductRecord struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        Localized `json:"name"`
	Description Localized `json:"description"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Image       string    `json:"image"`
}

type CategoryRecord struct {
	ID   string    `json:"id"`
	Slug string    `json:"slug,omitempty"`
	Name Localized `json:"name"`
}

// Dataset is the whole catalog as loaded from a Source.
type Dataset struct {
	Products   []ProductRecord  `json:"products"`
	Categories []CategoryRecord `json:"categories"`
}

type ProductView struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Image       string  `json:"image"`
	HasImage    bool    `json:"has_image"`
}

type CategoryView struct {
	ID   string `json:"id"`
	Slug string `json:"slug,omitempty"`
	Name string `json:"name"`
}

// Validate checks key uniqueness. Records failing the display policy are
// not an error here; the accessor filters them.
func (d Dataset) Validate() error {
	ids := make(map[string]struct{}, len(d.Products))
	slugs := make(map[string]struct{}, len(d.Products))

	for i, p := range d.Products {
		if p.ID == "" || p.Slug == "" {
			return fmt.Errorf("product #%d: %w", i, ErrEmptyKey)
		}
		if _, dup := ids[p.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
		}
		if _, dup := slugs[p.Slug]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateSlug, p.Slug)
		}
		ids[p.ID] = struct{}{}
		slugs[p.Slug] = struct{}{}
	}
	return nil
}
