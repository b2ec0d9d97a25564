package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrMappingNotFound indicates no staff mapping exists for a user at a branch.
var ErrMappingNotFound = errors.New("roster: staff mapping not found")

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads staff mappings, locations, and qualifications from the
// synced read model.
type Repository struct {
	db DB
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("roster: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db DB) *Repository {
	return &Repository{db: db}
}

// StaffForLocation returns the staff roster for one branch.
func (r *Repository) StaffForLocation(ctx context.Context, branchID string) ([]StaffMapping, error) {
	rows, err := r.db.Query(ctx, `
		SELECT phorest_staff_id, user_id, phorest_branch_id, display_name, stylist_level, COALESCE(photo_url, '')
		FROM staff_mappings
		WHERE phorest_branch_id = $1
		ORDER BY display_name
	`, branchID)
	if err != nil {
		return nil, fmt.Errorf("roster: staff for location: %w", err)
	}
	defer rows.Close()
	return scanStaff(rows)
}

// AllStaff returns every mapping row across branches.
func (r *Repository) AllStaff(ctx context.Context) ([]StaffMapping, error) {
	rows, err := r.db.Query(ctx, `
		SELECT phorest_staff_id, user_id, phorest_branch_id, display_name, stylist_level, COALESCE(photo_url, '')
		FROM staff_mappings
		ORDER BY display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("roster: all staff: %w", err)
	}
	defer rows.Close()
	return scanStaff(rows)
}

// MappingFor resolves the mapping row for a user at a branch.
func (r *Repository) MappingFor(ctx context.Context, userID, branchID string) (*StaffMapping, error) {
	var m StaffMapping
	err := r.db.QueryRow(ctx, `
		SELECT phorest_staff_id, user_id, phorest_branch_id, display_name, stylist_level, COALESCE(photo_url, '')
		FROM staff_mappings
		WHERE user_id = $1 AND phorest_branch_id = $2
	`, userID, branchID).Scan(&m.PhorestStaffID, &m.UserID, &m.PhorestBranchID, &m.DisplayName, &m.StylistLevel, &m.PhotoURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMappingNotFound
		}
		return nil, fmt.Errorf("roster: mapping lookup: %w", err)
	}
	return &m, nil
}

// Locations returns all branches.
func (r *Repository) Locations(ctx context.Context) ([]Location, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, phorest_branch_id, name, address, city FROM locations ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("roster: locations: %w", err)
	}
	defer rows.Close()
	return scanLocations(rows)
}

// LocationsForStylist returns the branches a stylist works at, joining the
// all-locations roster on user_id.
func (r *Repository) LocationsForStylist(ctx context.Context, userID string) ([]Location, error) {
	rows, err := r.db.Query(ctx, `
		SELECT l.id, l.phorest_branch_id, l.name, l.address, l.city
		FROM locations l
		JOIN staff_mappings sm ON sm.phorest_branch_id = l.phorest_branch_id
		WHERE sm.user_id = $1
		ORDER BY l.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("roster: locations for stylist: %w", err)
	}
	defer rows.Close()
	return scanLocations(rows)
}

// Qualifications looks up which staff at a branch are qualified for all of
// the given services. HasData is false when no qualification rows are synced
// for any of the services; callers treat that as fail-open.
func (r *Repository) Qualifications(ctx context.Context, serviceIDs []string, branchID string) (QualificationResult, error) {
	if len(serviceIDs) == 0 {
		return QualificationResult{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT phorest_staff_id
		FROM staff_service_qualifications
		WHERE service_id = ANY($1) AND phorest_branch_id = $2
		GROUP BY phorest_staff_id
		HAVING COUNT(DISTINCT service_id) = $3
	`, serviceIDs, branchID, len(serviceIDs))
	if err != nil {
		return QualificationResult{}, fmt.Errorf("roster: qualifications: %w", err)
	}
	defer rows.Close()

	var staffIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return QualificationResult{}, fmt.Errorf("roster: scan qualification: %w", err)
		}
		staffIDs = append(staffIDs, id)
	}
	if err := rows.Err(); err != nil {
		return QualificationResult{}, err
	}

	hasData, err := r.hasQualificationRows(ctx, serviceIDs)
	if err != nil {
		return QualificationResult{}, err
	}
	return QualificationResult{HasData: hasData, QualifiedStaffIDs: staffIDs}, nil
}

// QualifiedServices returns the service set one stylist is qualified for,
// across branches. Used by the stylist-first flow.
func (r *Repository) QualifiedServices(ctx context.Context, userID string) (StylistServiceSet, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT q.service_id
		FROM staff_service_qualifications q
		JOIN staff_mappings sm ON sm.phorest_staff_id = q.phorest_staff_id
		WHERE sm.user_id = $1
	`, userID)
	if err != nil {
		return StylistServiceSet{}, fmt.Errorf("roster: qualified services: %w", err)
	}
	defer rows.Close()

	set := StylistServiceSet{ServiceIDs: make(map[string]struct{})}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return StylistServiceSet{}, fmt.Errorf("roster: scan qualified service: %w", err)
		}
		set.ServiceIDs[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return StylistServiceSet{}, err
	}
	set.HasData = len(set.ServiceIDs) > 0
	return set, nil
}

// EmailFor returns the work email on file for a platform user, or "" when
// none is recorded. Notification senders treat a blank address as skip.
func (r *Repository) EmailFor(ctx context.Context, userID string) (string, error) {
	var email string
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(email, '') FROM staff_mappings WHERE user_id = $1 LIMIT 1
	`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("roster: email lookup: %w", err)
	}
	return email, nil
}

func (r *Repository) hasQualificationRows(ctx context.Context, serviceIDs []string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM staff_service_qualifications WHERE service_id = ANY($1))
	`, serviceIDs).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("roster: qualification existence: %w", err)
	}
	return exists, nil
}

func scanStaff(rows pgx.Rows) ([]StaffMapping, error) {
	var out []StaffMapping
	for rows.Next() {
		var m StaffMapping
		if err := rows.Scan(&m.PhorestStaffID, &m.UserID, &m.PhorestBranchID, &m.DisplayName, &m.StylistLevel, &m.PhotoURL); err != nil {
			return nil, fmt.Errorf("roster: scan staff: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanLocations(rows pgx.Rows) ([]Location, error) {
	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.PhorestBranchID, &l.Name, &l.Address, &l.City); err != nil {
			return nil, fmt.Errorf("roster: scan location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
