// Package locale resolves the display language of a request and translates
// localized record fields with an English fallback.
package locale

import (
	"errors"
	"net/http"

	"golang.org/x/text/language"
)

const Default = "en"

// ErrMissingTranslation is returned when neither the requested locale nor the
// default has a non-empty entry.
var ErrMissingTranslation = errors.New("missing translation")

var supported = []string{"en", "tr"}

var matcher = language.NewMatcher([]language.Tag{
	language.English, // first tag is the matcher's fallback
	language.Turkish,
})

// Supported returns the locales the site renders, default first.
func Supported() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	return out
}

func IsSupported(code string) bool {
	for _, s := range supported {
		if s == code {
			return true
		}
	}
	return false
}

// Normalize maps any code outside the supported set to Default.
func Normalize(code string) string {
	if IsSupported(code) {
		return code
	}
	return Default
}

// Translate resolves m for code: m[code] when present and non-empty,
// otherwise m[Default].
func Translate(m map[string]string, code string) (string, error) {
	if s := m[code]; s != "" {
		return s, nil
	}
	if s := m[Default]; s != "" {
		return s, nil
	}
	return "", ErrMissingTranslation
}

// Negotiate picks the best supported locale for an Accept-Language header.
func Negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return supported[idx]
}

// FromRequest negotiates the locale of r from its Accept-Language header.
func FromRequest(r *http.Request) string {
	return Negotiate(r.Header.Get("Accept-Language"))
}
