package catalog

import "context"

// Source loads the catalog dataset wholesale. Ping reports whether the
// backing system is reachable; static sources always are.
type Source interface {
	Load(ctx context.Context) (Dataset, error)
	Ping(ctx context.Context) error
}
