package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
)

func TestQualificationsAllServicesRequired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	serviceIDs := []string{"svc1", "svc2"}
	mock.ExpectQuery(`SELECT phorest_staff_id`).
		WithArgs(serviceIDs, "branch-1", 2).
		WillReturnRows(pgxmock.NewRows([]string{"phorest_staff_id"}).AddRow("st-b"))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(serviceIDs).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewRepositoryWithDB(mock)
	result, err := repo.Qualifications(context.Background(), serviceIDs, "branch-1")
	if err != nil {
		t.Fatalf("Qualifications failed: %v", err)
	}

	if !result.HasData {
		t.Error("HasData = false, want true")
	}
	if len(result.QualifiedStaffIDs) != 1 || result.QualifiedStaffIDs[0] != "st-b" {
		t.Errorf("QualifiedStaffIDs = %v, want [st-b]", result.QualifiedStaffIDs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestQualificationsNoRowsIsFailOpen(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	serviceIDs := []string{"svc-new"}
	mock.ExpectQuery(`SELECT phorest_staff_id`).
		WithArgs(serviceIDs, "branch-1", 1).
		WillReturnRows(pgxmock.NewRows([]string{"phorest_staff_id"}))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(serviceIDs).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	repo := NewRepositoryWithDB(mock)
	result, err := repo.Qualifications(context.Background(), serviceIDs, "branch-1")
	if err != nil {
		t.Fatalf("Qualifications failed: %v", err)
	}

	if result.HasData {
		t.Error("HasData = true, want false when no rows synced")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMappingForNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT phorest_staff_id, user_id`).
		WithArgs("u-x", "branch-9").
		WillReturnError(errors.New("no rows in result set"))

	repo := NewRepositoryWithDB(mock)
	_, err = repo.MappingFor(context.Background(), "u-x", "branch-9")
	if err == nil {
		t.Fatal("expected error for missing mapping")
	}
}

func TestLocationsForStylist(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM locations l`).
		WithArgs("u-b").
		WillReturnRows(pgxmock.NewRows([]string{"id", "phorest_branch_id", "name", "address", "city"}).
			AddRow("loc-1", "branch-1", "Downtown", "1 Main St", "Cork"))

	repo := NewRepositoryWithDB(mock)
	locations, err := repo.LocationsForStylist(context.Background(), "u-b")
	if err != nil {
		t.Fatalf("LocationsForStylist failed: %v", err)
	}

	if len(locations) != 1 || locations[0].PhorestBranchID != "branch-1" {
		t.Errorf("locations = %v, want one branch-1 row", locations)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEmailFor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT COALESCE\(email, ''\) FROM staff_mappings`).
		WithArgs("u-riley").
		WillReturnRows(pgxmock.NewRows([]string{"email"}).AddRow("riley@example.com"))

	repo := NewRepositoryWithDB(mock)
	email, err := repo.EmailFor(context.Background(), "u-riley")
	if err != nil {
		t.Fatalf("EmailFor failed: %v", err)
	}
	if email != "riley@example.com" {
		t.Errorf("email = %q", email)
	}
}

func TestEmailForMissingUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT COALESCE\(email, ''\) FROM staff_mappings`).
		WithArgs("u-ghost").
		WillReturnRows(pgxmock.NewRows([]string{"email"}))

	repo := NewRepositoryWithDB(mock)
	email, err := repo.EmailFor(context.Background(), "u-ghost")
	if err != nil {
		t.Fatalf("EmailFor failed: %v", err)
	}
	if email != "" {
		t.Errorf("email = %q, want empty", email)
	}
}
