// Package i18n holds the UI strings of the storefront.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed locales/*.json
var bundled embed.FS

// Bundle maps locale -> key -> message. Lookups fall back to the default
// locale and then to the key itself.
type Bundle struct {
	fallback string
	messages map[string]map[string]string
}

// Load reads every locales/<code>.json file of the embedded bundle.
func Load(fallback string) (*Bundle, error) {
	return LoadFS(bundled, "locales", fallback)
}

func LoadFS(fsys fs.FS, dir, fallback string) (*Bundle, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	b := &Bundle{fallback: fallback, messages: make(map[string]map[string]string, len(files))}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, err
		}
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("i18n %s: %w", f, err)
		}
		b.messages[strings.TrimSuffix(path.Base(f), ".json")] = m
	}

	if _, ok := b.messages[fallback]; !ok {
		return nil, fmt.Errorf("i18n: no messages for fallback locale %q", fallback)
	}
	return b, nil
}

func (b *Bundle) T(lang, key string) string {
	if s := b.messages[lang][key]; s != "" {
		return s
	}
	if s := b.messages[b.fallback][key]; s != "" {
		return s
	}
	return key
}

// Locales lists the loaded locale codes.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.messages))
	for k := range b.messages {
		out = append(out, k)
	}
	return out
}
