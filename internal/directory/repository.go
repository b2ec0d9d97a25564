package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrClientNotFound indicates no client row matches the ID.
var ErrClientNotFound = errors.New("directory: client not found")

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads the client book from the synced read model.
type Repository struct {
	db DB
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("directory: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db DB) *Repository {
	return &Repository{db: db}
}

const clientColumns = `
	id, phorest_client_id, name, COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(preferred_stylist_id, ''), is_banned, COALESCE(ban_reason, ''),
	visit_count, total_spend, last_visit
`

// GetByID loads one client.
func (r *Repository) GetByID(ctx context.Context, id string) (*Client, error) {
	row := r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("directory: get client: %w", err)
	}
	return c, nil
}

// Search matches clients by name, email, or phone fragment. Backs the
// debounced lookup on the client step.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]Client, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE name ILIKE '%' || $1 || '%'
		   OR email ILIKE '%' || $1 || '%'
		   OR phone LIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("directory: search clients: %w", err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("directory: scan client: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// FindDuplicates returns possible duplicates for a new client by exact email
// or phone match. Used to warn before creating.
func (r *Repository) FindDuplicates(ctx context.Context, email, phone string) ([]Client, error) {
	if email == "" && phone == "" {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE ($1 <> '' AND email = $1)
		   OR ($2 <> '' AND phone = $2)
		ORDER BY name
	`, email, phone)
	if err != nil {
		return nil, fmt.Errorf("directory: find duplicates: %w", err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("directory: scan duplicate: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	if err := row.Scan(
		&c.ID, &c.PhorestClientID, &c.Name, &c.Email, &c.Phone,
		&c.PreferredStylistID, &c.IsBanned, &c.BanReason,
		&c.VisitCount, &c.TotalSpend, &c.LastVisit,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
