// Package roster exposes staff mappings, locations, and service
// qualifications synced from the booking backend. A staff mapping row is
// scoped to one branch; the same stylist may carry mapping rows across
// several branches, joined on user_id.
package roster

// StaffMapping links a platform user to a Phorest staff member at one branch.
type StaffMapping struct {
	PhorestStaffID  string `json:"phorest_staff_id"`
	UserID          string `json:"user_id"`
	PhorestBranchID string `json:"phorest_branch_id"`
	DisplayName     string `json:"display_name"`
	StylistLevel    string `json:"stylist_level"`
	PhotoURL        string `json:"photo_url,omitempty"`
}

// Location is a salon branch.
type Location struct {
	ID              string `json:"id"`
	PhorestBranchID string `json:"phorest_branch_id"`
	Name            string `json:"name"`
	Address         string `json:"address"`
	City            string `json:"city"`
}
