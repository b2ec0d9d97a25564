package wizard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/salonsuite/platform/internal/directory"
	"github.com/salonsuite/platform/internal/recurrence"
	"github.com/salonsuite/platform/internal/roster"
)

// ErrUnknownStep is returned for a step outside the session's variant.
var ErrUnknownStep = errors.New("wizard: unknown step for variant")

// PreSelectedStylist is recorded when the stylist-first branch is entered.
// All five fields reset together when the branch is exited.
type PreSelectedStylist struct {
	UserID         string `json:"user_id"`
	PhorestStaffID string `json:"phorest_staff_id"`
	Name           string `json:"name"`
	PhotoURL       string `json:"photo_url,omitempty"`
	Level          string `json:"level,omitempty"`
}

// Draft is the in-memory booking draft for one wizard session. It exists
// only for the life of the session: created when the wizard opens, deleted
// on close or successful submit, never persisted as an offline draft.
type Draft struct {
	SessionID          string               `json:"session_id"`
	Variant            Variant              `json:"variant"`
	Mode               FlowMode             `json:"mode"`
	Step               Step                 `json:"step"`
	HighestStepReached int                  `json:"highest_step_reached"`
	SelectedServiceIDs []string             `json:"selected_service_ids"`
	SelectedCategory   string               `json:"selected_category,omitempty"`
	SelectedClient     *directory.Client    `json:"selected_client,omitempty"`
	SelectedStylist    *roster.StaffMapping `json:"selected_stylist,omitempty"`
	SelectedLocation   *roster.Location     `json:"selected_location,omitempty"`
	// LocationAutoSelected marks that the stylist-first branch skipped the
	// location step because the stylist works at exactly one branch.
	LocationAutoSelected bool                `json:"location_auto_selected,omitempty"`
	PreSelected          *PreSelectedStylist `json:"pre_selected_stylist,omitempty"`
	BookingNotes         string              `json:"booking_notes,omitempty"`
	Recurrence           *recurrence.Rule    `json:"recurrence,omitempty"`
	Submitted            bool                `json:"submitted"`
	AppointmentID        string              `json:"appointment_id,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// NewDraft opens a fresh draft on the service step.
func NewDraft(variant Variant) *Draft {
	now := time.Now().UTC()
	return &Draft{
		SessionID: uuid.NewString(),
		Variant:   variant,
		Mode:      NormalFlow,
		Step:      StepService,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NavigateTo moves to a step and raises the watermark when entering new
// territory. There is no skip guard here: callers navigate only after
// validating the step they are leaving.
func (d *Draft) NavigateTo(step Step) error {
	idx := StepIndex(d.Variant, step)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}
	d.Step = step
	if idx > d.HighestStepReached {
		d.HighestStepReached = idx
	}
	return nil
}

// GoBack steps to the previous screen. NormalFlow walks the canonical list;
// StylistFirstFlow follows its own transition table; BreakEntryFlow exits
// the break form back to normal flow without moving steps.
func (d *Draft) GoBack() {
	switch d.Mode {
	case StylistFirstFlow:
		if prev, ok := stylistFirstBack[d.Step]; ok {
			d.Step = prev
		}
	case BreakEntryFlow:
		d.Mode = NormalFlow
	default:
		idx := StepIndex(d.Variant, d.Step)
		if idx > 0 {
			d.Step = StepOrder(d.Variant)[idx-1]
		}
	}
}

// CanGoForward reports whether the next step is both previously visited and
// reachable from a complete current step. Confirm is terminal and never
// forwards.
func (d *Draft) CanGoForward() bool {
	idx := StepIndex(d.Variant, d.Step)
	if idx < 0 || idx+1 > d.HighestStepReached {
		return false
	}
	return d.StepComplete(d.Step)
}

// StepComplete is the per-step completion predicate.
func (d *Draft) StepComplete(step Step) bool {
	switch step {
	case StepService:
		// Services are optional; skipping is a valid action.
		return true
	case StepLocation:
		return d.SelectedLocation != nil
	case StepClient:
		return d.SelectedClient != nil
	case StepStylist:
		return d.SelectedStylist != nil || d.PreSelected != nil
	default:
		return false
	}
}

// ToggleService removes the id if present, else appends it. Returns whether
// the id was added.
func (d *Draft) ToggleService(serviceID string) bool {
	for i, id := range d.SelectedServiceIDs {
		if id == serviceID {
			d.SelectedServiceIDs = append(d.SelectedServiceIDs[:i], d.SelectedServiceIDs[i+1:]...)
			return false
		}
	}
	d.SelectedServiceIDs = append(d.SelectedServiceIDs, serviceID)
	return true
}

// EnterStylistFirst switches to the stylist-first branch, recording the
// pre-selection and seeding the stylist so downstream qualification checks
// have a concrete stylist to validate against.
func (d *Draft) EnterStylistFirst(m roster.StaffMapping) {
	d.Mode = StylistFirstFlow
	d.PreSelected = &PreSelectedStylist{
		UserID:         m.UserID,
		PhorestStaffID: m.PhorestStaffID,
		Name:           m.DisplayName,
		PhotoURL:       m.PhotoURL,
		Level:          m.StylistLevel,
	}
	stylist := m
	d.SelectedStylist = &stylist
}

// ClearPreSelectedStylist exits the stylist-first branch: all five
// pre-selection fields, the seeded stylist, and the location reset together,
// and the flow reverts to normal.
func (d *Draft) ClearPreSelectedStylist() {
	d.PreSelected = nil
	d.SelectedStylist = nil
	d.SelectedLocation = nil
	d.LocationAutoSelected = false
	d.Mode = NormalFlow
}

// SubmitEligible reports whether the draft has everything a booking needs.
func (d *Draft) SubmitEligible() bool {
	return d.SelectedClient != nil &&
		len(d.SelectedServiceIDs) > 0 &&
		(d.SelectedStylist != nil || d.PreSelected != nil) &&
		d.SelectedLocation != nil
}

// StylistLevelText returns the level string driving level-based pricing,
// preferring the stylist-first pre-selection.
func (d *Draft) StylistLevelText() string {
	if d.PreSelected != nil && d.PreSelected.Level != "" {
		return d.PreSelected.Level
	}
	if d.SelectedStylist != nil {
		return d.SelectedStylist.StylistLevel
	}
	return ""
}

// BreakForm is the break/time-off entry captured in BreakEntryFlow.
type BreakForm struct {
	UserID              string `json:"user_id"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
	StartTime           string `json:"start_time,omitempty"`
	EndTime             string `json:"end_time,omitempty"`
	IsFullDay           bool   `json:"is_full_day"`
	Reason              string `json:"reason"`
	Notes               string `json:"notes,omitempty"`
	BlocksOnlineBooking bool   `json:"blocks_online_booking"`
}

// Validate enforces required fields and the full-day/explicit-times
// exclusivity: a full-day break carries no times, a partial-day break
// carries both.
func (f BreakForm) Validate() error {
	if strings.TrimSpace(f.UserID) == "" {
		return errors.New("wizard: break requires user_id")
	}
	if f.StartDate == "" || f.EndDate == "" {
		return errors.New("wizard: break requires start_date and end_date")
	}
	if strings.TrimSpace(f.Reason) == "" {
		return errors.New("wizard: break requires a reason")
	}
	hasTimes := f.StartTime != "" || f.EndTime != ""
	if f.IsFullDay && hasTimes {
		return errors.New("wizard: full-day break cannot carry explicit times")
	}
	if !f.IsFullDay && (f.StartTime == "" || f.EndTime == "") {
		return errors.New("wizard: partial-day break requires start_time and end_time")
	}
	return nil
}
