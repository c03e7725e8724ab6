package web

import (
	"encoding/json"
	"fmt"
	"html/template"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
	"github.com/kartikshukla17/mashoor-landing-project/internal/i18n"
	"github.com/kartikshukla17/mashoor-landing-project/internal/locale"
)

// Page is the data every template receives.
type Page struct {
	Locale      string
	Title       string
	Description string
	Path        string
	SwitchPath  string
	Canonical   string
	FavCount    int
	Meta        *Meta
	JSONLD      template.JS

	bundle *i18n.Bundle
}

// Meta carries OpenGraph and Twitter card tags of a product page.
type Meta struct {
	Title       string
	Description string
	Image       string
}

func (p Page) T(key string) string {
	if p.bundle == nil {
		return key
	}
	return p.bundle.T(p.Locale, key)
}

// Card is one product tile.
type Card struct {
	Product  catalog.ProductView
	Price    string
	Favorite bool
}

type HomeData struct {
	Page
	Cards      []Card
	Categories []catalog.CategoryView
}

type ProductData struct {
	Page
	Card
}

type FavoritesData struct {
	Page
	Cards []Card
}

type ErrorData struct {
	Page
	TitleKey string
	TextKey  string
}

// FormatPrice renders amount in code for the locale, e.g. "$100.00". An
// unknown currency code falls back to "100.00 XYZ".
func FormatPrice(loc string, amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}
	p := message.NewPrinter(language.Make(loc))
	return p.Sprint(currency.Symbol(unit.Amount(amount)))
}

// productJSONLD is the schema.org Product of a detail page.
func productJSONLD(p catalog.ProductView) (template.JS, error) {
	image := ""
	if p.HasImage {
		image = p.Image
	}
	b, err := json.Marshal(map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        p.Name,
		"description": p.Description,
		"image":       image,
		"offers": map[string]any{
			"@type":         "Offer",
			"priceCurrency": p.Currency,
			"price":         p.Price,
			"availability":  "https://schema.org/InStock",
		},
	})
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

// otherLocale is the locale the header switcher points to.
func otherLocale(loc string) string {
	for _, l := range locale.Supported() {
		if l != loc {
			return l
		}
	}
	return locale.Default
}
