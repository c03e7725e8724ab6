package catalog

import "github.com/kartikshukla17/mashoor-landing-project/internal/locale"

// Listable reports whether a record may be shown: English name and
// description must be non-empty and an image (or the placeholder) present.
func Listable(p ProductRecord) bool {
	return p.Name[locale.Default] != "" &&
		p.Description[locale.Default] != "" &&
		p.Image != ""
}

// CategoryListable reports whether a category may be shown: like products,
// it needs an English name, so every locale lists the same categories.
func CategoryListable(c CategoryRecord) bool {
	return c.Name[locale.Default] != ""
}

func (p ProductRecord) View(code string) (ProductView, error) {
	name, err := locale.Translate(p.Name, code)
	if err != nil {
		return ProductView{}, err
	}
	desc, err := locale.Translate(p.Description, code)
	if err != nil {
		return ProductView{}, err
	}

	return ProductView{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        name,
		Description: desc,
		Price:       p.Price,
		Currency:    p.Currency,
		Image:       p.Image,
		HasImage:    p.Image != PlaceholderImage,
	}, nil
}

func (c CategoryRecord) View(code string) (CategoryView, error) {
	name, err := locale.Translate(c.Name, code)
	if err != nil {
		return CategoryView{}, err
	}
	return CategoryView{ID: c.ID, Slug: c.Slug, Name: name}, nil
}
