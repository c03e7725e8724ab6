// Package bootstrap builds the long-lived dependencies the binaries share
// from a loaded config.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
	"github.com/kartikshukla17/mashoor-landing-project/internal/config"
	"github.com/kartikshukla17/mashoor-landing-project/internal/database"
	"github.com/kartikshukla17/mashoor-landing-project/internal/i18n"
	"github.com/kartikshukla17/mashoor-landing-project/internal/locale"
)

// CatalogSource opens the configured catalog source. The returned close
// func is never nil.
func CatalogSource(ctx context.Context, cfg config.Catalog, log *zap.Logger) (catalog.Source, func(), error) {
	noop := func() {}

	switch cfg.Source {
	case config.SourceEmbedded:
		return catalog.NewEmbeddedSource(), noop, nil
	case config.SourceFile:
		return catalog.NewFileSource(cfg.Dir), noop, nil
	case config.SourceHTTP:
		return catalog.NewHTTPSource(cfg.RemoteURL), noop, nil
	case config.SourcePostgres:
		db, err := database.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, noop, err
		}
		closeDB := func() { _ = db.Close() }

		if cfg.Migrate {
			if err := migrateAndSeed(ctx, db, log); err != nil {
				closeDB()
				return nil, noop, err
			}
		}
		return catalog.NewPostgresSource(db), closeDB, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", config.ErrInvalidSource, cfg.Source)
	}
}

func migrateAndSeed(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	if err := database.Migrate(ctx, db, log); err != nil {
		return err
	}
	if err := database.Seed(ctx, db, catalog.Bundled()); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	log.Info("catalog seeded")
	return nil
}

// Catalog opens the configured source and loads it into an accessor.
func Catalog(ctx context.Context, cfg config.Catalog, log *zap.Logger) (*catalog.Accessor, catalog.Source, func(), error) {
	src, closeSrc, err := CatalogSource(ctx, cfg, log)
	if err != nil {
		return nil, nil, closeSrc, err
	}

	a, err := catalog.Load(ctx, src)
	if err != nil {
		closeSrc()
		return nil, nil, func() {}, err
	}

	log.Info("catalog loaded",
		zap.String("source", cfg.Source),
		zap.Int("products", len(a.ListProducts("en"))),
	)
	return a, src, closeSrc, nil
}

// Messages loads the embedded UI strings and fails when a supported locale
// has no bundle.
func Messages() (*i18n.Bundle, error) {
	b, err := i18n.Load(locale.Default)
	if err != nil {
		return nil, err
	}
	return b, checkLocales(b.Locales(), locale.Supported())
}

func checkLocales(loaded, supported []string) error {
	for _, code := range supported {
		if !slices.Contains(loaded, code) {
			return fmt.Errorf("i18n: no messages for supported locale %q", code)
		}
	}
	return nil
}
