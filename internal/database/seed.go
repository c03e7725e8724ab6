package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
)

// Seed replaces the catalog tables with d in one transaction, keeping
// dataset order in the position column. Rows not in d are deleted, so a
// later Load only sees validated records.
func Seed(ctx context.Context, db *sql.DB, d catalog.Dataset) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"products", "categories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("seed clear %s: %w", table, err)
		}
	}

	for i, p := range d.Products {
		name, err := json.Marshal(p.Name)
		if err != nil {
			return err
		}
		desc, err := json.Marshal(p.Description)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (id, position, slug, name, description, price, currency, image)
			VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6, $7, $8)
		`, p.ID, i, p.Slug, string(name), string(desc), p.Price, p.Currency, p.Image)
		if err != nil {
			return fmt.Errorf("seed product %q: %w", p.ID, err)
		}
	}

	for i, c := range d.Categories {
		name, err := json.Marshal(c.Name)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO categories (id, position, slug, name)
			VALUES ($1, $2, $3, $4::jsonb)
		`, c.ID, i, c.Slug, string(name))
		if err != nil {
			return fmt.Errorf("seed category %q: %w", c.ID, err)
		}
	}

	return tx.Commit()
}
