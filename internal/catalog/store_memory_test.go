package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "products.json", `[{"id":"1","slug":"a","name":{"en":"A"},"description":{"en":"d"},"price":1,"currency":"USD","image":"<url>"}]`)
	writeFile(t, dir, "categories.json", `[{"id":"c1","name":{"en":"Cat"}}]`)

	src := NewFileSource(dir)
	require.NoError(t, src.Ping(context.Background()))

	d, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, d.Products, 1)
	assert.Equal(t, "a", d.Products[0].Slug)
	assert.Equal(t, PlaceholderImage, d.Products[0].Image)
	require.Len(t, d.Categories, 1)
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileSource(dir).Load(context.Background())
	assert.Error(t, err, "missing files")

	writeFile(t, dir, "products.json", `{not json`)
	writeFile(t, dir, "categories.json", `[]`)
	_, err = NewFileSource(dir).Load(context.Background())
	assert.ErrorContains(t, err, "products.json")

	assert.Error(t, NewFileSource(filepath.Join(dir, "nope")).Ping(context.Background()))
}

func TestBundledDatasetIsValid(t *testing.T) {
	d := Bundled()
	require.NoError(t, d.Validate())
	require.NotEmpty(t, d.Products)
	assert.Equal(t, "classic-leather-belt", d.Products[0].Slug)
	assert.NotEmpty(t, d.Categories)
}
