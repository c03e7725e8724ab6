package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutFile = "layout.html"

// Renderer holds one parsed template set per page, each paired with the
// shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(entries))}
	for _, e := range entries {
		if e.IsDir() || e.Name() == layoutFile {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".html")

		t, err := template.New(layoutFile).Funcs(funcMap).ParseFS(templateFS,
			"templates/"+layoutFile, "templates/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", e.Name(), err)
		}
		r.pages[name] = t
	}
	return r, nil
}

var funcMap = template.FuncMap{
	// tile pairs a card with the page it is rendered on.
	"tile": func(p Page, c Card) ProductData { return ProductData{Page: p, Card: c} },
}

// Render executes page into a buffer first so a template failure can still
// become a clean error response.
func (rn *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := rn.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
