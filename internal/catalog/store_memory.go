package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
)

const (
	productsFile   = "products.json"
	categoriesFile = "categories.json"
)

//go:embed dataset/*.json
var bundled embed.FS

// EmbeddedSource serves the dataset compiled into the binary.
type EmbeddedSource struct{}

func NewEmbeddedSource() *EmbeddedSource { return &EmbeddedSource{} }

func (EmbeddedSource) Ping(context.Context) error { return nil }

func (EmbeddedSource) Load(context.Context) (Dataset, error) {
	sub, err := fs.Sub(bundled, "dataset")
	if err != nil {
		return Dataset{}, err
	}
	return readDataset(sub)
}

// Bundled returns the embedded dataset. It panics if the bundle is broken,
// which can only happen at build time.
func Bundled() Dataset {
	d, err := EmbeddedSource{}.Load(context.Background())
	if err != nil {
		panic(err)
	}
	return d
}

// FileSource reads products.json and categories.json from a directory.
type FileSource struct {
	Dir string
}

func NewFileSource(dir string) *FileSource { return &FileSource{Dir: dir} }

func (s *FileSource) Ping(context.Context) error {
	_, err := os.Stat(s.Dir)
	return err
}

func (s *FileSource) Load(context.Context) (Dataset, error) {
	return readDataset(os.DirFS(s.Dir))
}

func readDataset(fsys fs.FS) (Dataset, error) {
	var d Dataset
	if err := readJSON(fsys, productsFile, &d.Products); err != nil {
		return Dataset{}, err
	}
	if err := readJSON(fsys, categoriesFile, &d.Categories); err != nil {
		return Dataset{}, err
	}
	return d, nil
}

func readJSON(fsys fs.FS, name string, dst any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
