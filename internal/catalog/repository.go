package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the repository uses. pgxmock satisfies it
// in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads the service menu from the synced read model.
type Repository struct {
	db DB
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db DB) *Repository {
	return &Repository{db: db}
}

// ListServices returns the full menu ordered by category then name.
func (r *Repository) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, phorest_service_id, name, duration_minutes, price, category
		FROM services
		ORDER BY category, name
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	defer rows.Close()
	return scanServices(rows)
}

// GetServices returns the services with the given IDs, preserving input order.
func (r *Repository) GetServices(ctx context.Context, ids []string) ([]Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, phorest_service_id, name, duration_minutes, price, category
		FROM services
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog: get services: %w", err)
	}
	defer rows.Close()

	found, err := scanServices(rows)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Service, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	ordered := make([]Service, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

// ListCategories returns distinct service categories.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT category FROM services WHERE category <> '' ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("catalog: scan category: %w", err)
		}
		out = append(out, Category{ID: name, Name: name})
	}
	return out, rows.Err()
}

// LevelPrices returns per-service price overrides for a stylist level slug.
// Services with no override for that level are absent from the map; callers
// fall back to the base price.
func (r *Repository) LevelPrices(ctx context.Context, serviceIDs []string, levelSlug string) (map[string]float64, error) {
	if len(serviceIDs) == 0 || levelSlug == "" {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT service_id, price
		FROM service_level_prices
		WHERE service_id = ANY($1) AND level_slug = $2
	`, serviceIDs, levelSlug)
	if err != nil {
		return nil, fmt.Errorf("catalog: level prices: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]float64)
	for rows.Next() {
		var serviceID string
		var price float64
		if err := rows.Scan(&serviceID, &price); err != nil {
			return nil, fmt.Errorf("catalog: scan level price: %w", err)
		}
		overrides[serviceID] = price
	}
	return overrides, rows.Err()
}

func scanServices(rows pgx.Rows) ([]Service, error) {
	var out []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.PhorestServiceID, &s.Name, &s.DurationMinutes, &s.Price, &s.Category); err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
