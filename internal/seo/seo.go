// Package seo renders the sitemap and robots.txt of the storefront.
package seo

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
	"github.com/kartikshukla17/mashoor-landing-project/internal/locale"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type URL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// ProductLister is the slice of the catalog the sitemap needs.
type ProductLister interface {
	ListProducts(code string) []catalog.ProductView
}

// Sitemap lists, for every locale, the home and favorites pages first and
// then one product page per listed product.
func Sitemap(siteURL string, locales []string, products ProductLister) URLSet {
	base := strings.TrimRight(siteURL, "/")
	set := URLSet{XMLNS: sitemapNS}

	for _, loc := range locales {
		set.URLs = append(set.URLs,
			URL{Loc: base + "/" + loc, ChangeFreq: "weekly", Priority: "1.0"},
			URL{Loc: base + "/" + loc + "/favorites", ChangeFreq: "monthly", Priority: "0.7"},
		)
	}
	for _, loc := range locales {
		for _, p := range products.ListProducts(loc) {
			set.URLs = append(set.URLs, URL{
				Loc:        base + "/" + loc + "/product/" + p.Slug,
				ChangeFreq: "weekly",
				Priority:   "0.8",
			})
		}
	}
	return set
}

func (s URLSet) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Robots(siteURL string) string {
	return "User-agent: *\nAllow: /\n\nSitemap: " + strings.TrimRight(siteURL, "/") + "/sitemap.xml"
}

type Handler struct {
	SiteURL  string
	Products ProductLister
	Log      *zap.Logger
}

func (h *Handler) Sitemap(w http.ResponseWriter, _ *http.Request) {
	body, err := Sitemap(h.SiteURL, locale.Supported(), h.Products).Marshal()
	if err != nil {
		if h.Log != nil {
			h.Log.Error("sitemap marshal failed", zap.Error(err))
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(body)
}

func (h *Handler) Robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(Robots(h.SiteURL)))
}
