package wizard

import "github.com/salonsuite/platform/internal/catalog"

// Totals is the aggregated duration and price for the selected services.
type Totals struct {
	DurationMinutes int `json:"duration_minutes"`
	// TotalPrice sums base prices, counting a missing price as zero.
	TotalPrice float64 `json:"total_price"`
	// LevelBasedTotalPrice applies per-stylist-level overrides where one
	// exists, falling back to the base price per service. With no level it
	// equals TotalPrice.
	LevelBasedTotalPrice float64 `json:"level_based_total_price"`
}

// AggregateTotals computes totals over the selected service details.
// levelOverrides maps service ID to the level-specific price; nil means no
// level pricing applies.
func AggregateTotals(services []catalog.Service, levelOverrides map[string]float64) Totals {
	var t Totals
	for _, s := range services {
		t.DurationMinutes += s.DurationMinutes
		base := s.BasePrice()
		t.TotalPrice += base
		if override, ok := levelOverrides[s.ID]; ok {
			t.LevelBasedTotalPrice += override
		} else {
			t.LevelBasedTotalPrice += base
		}
	}
	return t
}
