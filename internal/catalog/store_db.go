package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresSource reads the dataset from the products and categories tables.
// Row order is the position column, which preserves the bundled order.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresSource) Load(ctx context.Context) (Dataset, error) {
	var d Dataset

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		if d.Products, err = s.products(ctx); err != nil {
			return fmt.Errorf("products: %w", err)
		}
		if d.Categories, err = s.categories(ctx); err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		return nil
	})

	if err != nil {
		return Dataset{}, err
	}
	return d, nil
}

func (s *PostgresSource) products(ctx context.Context) ([]ProductRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, name, description, price, currency, image
		FROM products
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ProductRecord, 0, 16)
	for rows.Next() {
		var (
			p          ProductRecord
			name, desc []byte
		)
		if err := rows.Scan(&p.ID, &p.Slug, &name, &desc, &p.Price, &p.Currency, &p.Image); err != nil {
			return nil, err
		}
		if err := unmarshalLocalized(name, &p.Name); err != nil {
			return nil, fmt.Errorf("product %q name: %w", p.ID, err)
		}
		if err := unmarshalLocalized(desc, &p.Description); err != nil {
			return nil, fmt.Errorf("product %q description: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresSource) categories(ctx context.Context) ([]CategoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, name
		FROM categories
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CategoryRecord, 0, 8)
	for rows.Next() {
		var (
			c    CategoryRecord
			name []byte
		)
		if err := rows.Scan(&c.ID, &c.Slug, &name); err != nil {
			return nil, err
		}
		if err := unmarshalLocalized(name, &c.Name); err != nil {
			return nil, fmt.Errorf("category %q name: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func unmarshalLocalized(b []byte, dst *Localized) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
