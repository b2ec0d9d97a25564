package catalog

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
)

func TestGetServicesPreservesInputOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	cut := 50.0
	color := 70.0
	mock.ExpectQuery(`SELECT id, phorest_service_id, name, duration_minutes, price, category`).
		WithArgs([]string{"svc-color", "svc-cut"}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "phorest_service_id", "name", "duration_minutes", "price", "category"}).
			AddRow("svc-cut", "ph-1", "Cut", 30, &cut, "Hair").
			AddRow("svc-color", "ph-2", "Color", 45, &color, "Hair"))

	repo := NewRepositoryWithDB(mock)
	services, err := repo.GetServices(context.Background(), []string{"svc-color", "svc-cut"})
	if err != nil {
		t.Fatalf("GetServices failed: %v", err)
	}

	if len(services) != 2 {
		t.Fatalf("got %d services, want 2", len(services))
	}
	if services[0].ID != "svc-color" || services[1].ID != "svc-cut" {
		t.Errorf("order = [%s, %s], want [svc-color, svc-cut]", services[0].ID, services[1].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetServicesEmptyInput(t *testing.T) {
	repo := NewRepositoryWithDB(nil)
	services, err := repo.GetServices(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetServices failed: %v", err)
	}
	if services != nil {
		t.Errorf("got %v, want nil", services)
	}
}

func TestLevelPrices(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT service_id, price`).
		WithArgs([]string{"svc1", "svc2"}, "level-3").
		WillReturnRows(pgxmock.NewRows([]string{"service_id", "price"}).
			AddRow("svc1", 40.0))

	repo := NewRepositoryWithDB(mock)
	overrides, err := repo.LevelPrices(context.Background(), []string{"svc1", "svc2"}, "level-3")
	if err != nil {
		t.Fatalf("LevelPrices failed: %v", err)
	}

	if len(overrides) != 1 || overrides["svc1"] != 40.0 {
		t.Errorf("overrides = %v, want map[svc1:40]", overrides)
	}
	if _, ok := overrides["svc2"]; ok {
		t.Error("svc2 should have no override")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBasePriceNil(t *testing.T) {
	s := Service{}
	if got := s.BasePrice(); got != 0 {
		t.Errorf("BasePrice() = %v, want 0", got)
	}
	p := 55.0
	s.Price = &p
	if got := s.BasePrice(); got != 55.0 {
		t.Errorf("BasePrice() = %v, want 55", got)
	}
}
