package catalog

import (
	"context"
	"fmt"
	"maps"
)

// Accessor serves locale-resolved views over an immutable Dataset. It is
// safe for concurrent use because nothing mutates after New.
type Accessor struct {
	data   Dataset
	bySlug map[string]int
}

func New(d Dataset) (*Accessor, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(d.Products))
	for i, p := range d.Products {
		idx[p.Slug] = i
	}
	return &Accessor{data: d, bySlug: idx}, nil
}

// Load reads the dataset from src once and builds an Accessor over it.
func Load(ctx context.Context, src Source) (*Accessor, error) {
	d, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	a, err := New(d)
	if err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return a, nil
}

// ListProducts returns every listable product in dataset order.
func (a *Accessor) ListProducts(code string) []ProductView {
	out := make([]ProductView, 0, len(a.data.Products))
	for _, p := range a.data.Products {
		if !Listable(p) {
			continue
		}
		v, err := p.View(code)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (a *Accessor) GetProductBySlug(slug, code string) (ProductView, bool) {
	i, ok := a.bySlug[slug]
	if !ok {
		return ProductView{}, false
	}
	p := a.data.Products[i]
	if !Listable(p) {
		return ProductView{}, false
	}
	v, err := p.View(code)
	if err != nil {
		return ProductView{}, false
	}
	return v, true
}

// ListCategories returns every listable category in dataset order.
func (a *Accessor) ListCategories(code string) []CategoryView {
	out := make([]CategoryView, 0, len(a.data.Categories))
	for _, c := range a.data.Categories {
		if !CategoryListable(c) {
			continue
		}
		v, err := c.View(code)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Dataset returns a deep copy of the raw records.
func (a *Accessor) Dataset() Dataset {
	out := Dataset{
		Products:   make([]ProductRecord, len(a.data.Products)),
		Categories: make([]CategoryRecord, len(a.data.Categories)),
	}
	for i, p := range a.data.Products {
		p.Name = maps.Clone(p.Name)
		p.Description = maps.Clone(p.Description)
		out.Products[i] = p
	}
	for i, c := range a.data.Categories {
		c.Name = maps.Clone(c.Name)
		out.Categories[i] = c
	}
	return out
}
