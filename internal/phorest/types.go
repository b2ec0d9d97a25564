package phorest

// CreateBookingRequest is the payload for the create-booking bridge function.
type CreateBookingRequest struct {
	BranchID   string   `json:"branch_id"`
	ClientID   string   `json:"client_id"`
	StaffID    string   `json:"staff_id"`
	ServiceIDs []string `json:"service_ids"`
	StartTime  string   `json:"start_time"` // ISO8601
	Notes      string   `json:"notes,omitempty"`
}

// CreateBookingResponse is returned by create-booking.
type CreateBookingResponse struct {
	Success       bool   `json:"success"`
	AppointmentID string `json:"appointment_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// CreateClientRequest is the payload for the create-client bridge function.
type CreateClientRequest struct {
	BranchID           string `json:"branch_id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Gender             string `json:"gender,omitempty"`
	Email              string `json:"email,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Notes              string `json:"notes,omitempty"`
	Birthday           string `json:"birthday,omitempty"`
	ClientSince        string `json:"client_since,omitempty"`
	PreferredStylistID string `json:"preferred_stylist_id,omitempty"`
}

// CreatedClient is the client projection returned by create-client.
type CreatedClient struct {
	ID              string `json:"id"`
	PhorestClientID string `json:"phorest_client_id"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
}

// CreateClientResponse is returned by create-client.
type CreateClientResponse struct {
	Success bool           `json:"success"`
	Client  *CreatedClient `json:"client,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// RecurrenceRule is passed through to the recurring-appointment generator.
type RecurrenceRule struct {
	Frequency   string `json:"frequency"`
	Occurrences int    `json:"occurrences"`
}

// RecurringRequest asks the backend to expand a booked appointment into a
// recurring series. Expansion and conflict detection are entirely external.
type RecurringRequest struct {
	FirstAppointmentID string         `json:"first_appointment_id"`
	RecurrenceRule     RecurrenceRule `json:"recurrence_rule"`
}

// RecurringResponse reports how much of the series could be created. A
// skipped count is partial success, not an error.
type RecurringResponse struct {
	Success        bool   `json:"success"`
	CreatedCount   int    `json:"created_count"`
	SkippedCount   int    `json:"skipped_count"`
	TotalRequested int    `json:"total_requested"`
	Error          string `json:"error,omitempty"`
}

// BreakRequest is the payload for the break/time-off bridge function.
// IsFullDay and the explicit StartTime/EndTime pair are mutually exclusive;
// the wizard validates that before calling.
type BreakRequest struct {
	UserID              string `json:"user_id"`
	OrganizationID      string `json:"organization_id"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
	StartTime           string `json:"start_time,omitempty"`
	EndTime             string `json:"end_time,omitempty"`
	IsFullDay           bool   `json:"is_full_day"`
	Reason              string `json:"reason"`
	Notes               string `json:"notes,omitempty"`
	BlocksOnlineBooking bool   `json:"blocks_online_booking"`
}

// BreakResponse is returned by break-request.
type BreakResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
