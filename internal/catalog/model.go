// Package catalog exposes the service menu synced from the booking backend.
// Rows are read-only projections; the backend is authoritative.
package catalog

// Service is a bookable service as synced from Phorest.
type Service struct {
	ID               string   `json:"id"`
	PhorestServiceID string   `json:"phorest_service_id"`
	Name             string   `json:"name"`
	DurationMinutes  int      `json:"duration_minutes"`
	Price            *float64 `json:"price,omitempty"`
	Category         string   `json:"category"`
}

// BasePrice returns the service price, treating a missing price as zero.
func (s Service) BasePrice() float64 {
	if s.Price == nil {
		return 0
	}
	return *s.Price
}

// Category groups services on the selection screen.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
