package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salonsuite/platform/internal/catalog"
	"github.com/salonsuite/platform/internal/directory"
	"github.com/salonsuite/platform/internal/jobs"
	"github.com/salonsuite/platform/internal/observability/metrics"
	"github.com/salonsuite/platform/internal/phorest"
	"github.com/salonsuite/platform/internal/recurrence"
	"github.com/salonsuite/platform/internal/roster"
	"github.com/salonsuite/platform/pkg/logging"
)

var (
	// ErrAlreadySubmitted rejects a second submit for the same session.
	ErrAlreadySubmitted = errors.New("wizard: booking already submitted for this session")
	// ErrMissingRequiredData rejects a submit attempted before the draft has
	// a client, at least one service, a stylist, and a location. No backend
	// call is made.
	ErrMissingRequiredData = errors.New("wizard: draft is missing required booking data")
	// ErrNotInBreakFlow rejects a break submit outside the break entry flow.
	ErrNotInBreakFlow = errors.New("wizard: session is not in break entry")
)

// CatalogReader is the service-menu dependency of the controller.
type CatalogReader interface {
	GetServices(ctx context.Context, ids []string) ([]catalog.Service, error)
	LevelPrices(ctx context.Context, serviceIDs []string, levelSlug string) (map[string]float64, error)
}

// RosterReader supplies staff mappings, locations, and qualifications.
type RosterReader interface {
	StaffForLocation(ctx context.Context, branchID string) ([]roster.StaffMapping, error)
	MappingFor(ctx context.Context, userID, branchID string) (*roster.StaffMapping, error)
	LocationsForStylist(ctx context.Context, userID string) ([]roster.Location, error)
	Qualifications(ctx context.Context, serviceIDs []string, branchID string) (roster.QualificationResult, error)
	QualifiedServices(ctx context.Context, userID string) (roster.StylistServiceSet, error)
}

// ClientReader resolves salon clients for selection.
type ClientReader interface {
	GetByID(ctx context.Context, id string) (*directory.Client, error)
}

// BookingPlatform is the slice of the bridge client the wizard submits
// through.
type BookingPlatform interface {
	CreateBooking(ctx context.Context, req phorest.CreateBookingRequest) (*phorest.CreateBookingResponse, error)
	ExpandRecurrence(ctx context.Context, req phorest.RecurringRequest) (*phorest.RecurringResponse, error)
	RequestBreak(ctx context.Context, req phorest.BreakRequest) (*phorest.BreakResponse, error)
}

// ConfirmationPublisher queues the post-booking confirmation email.
type ConfirmationPublisher interface {
	EnqueueBookingConfirmation(ctx context.Context, c jobs.BookingConfirmation) error
}

// Controller drives wizard sessions: it owns every state transition and the
// submission path. Handlers stay thin over it.
type Controller struct {
	sessions  *SessionStore
	catalog   CatalogReader
	roster    RosterReader
	clients   ClientReader
	platform  BookingPlatform
	publisher ConfirmationPublisher
	orgID     string
	metrics   *metrics.WizardMetrics
	logger    *logging.Logger
}

// NewController wires the controller. publisher and metrics may be nil.
func NewController(
	sessions *SessionStore,
	cat CatalogReader,
	ros RosterReader,
	clients ClientReader,
	platform BookingPlatform,
	publisher ConfirmationPublisher,
	orgID string,
	m *metrics.WizardMetrics,
	logger *logging.Logger,
) *Controller {
	if logger == nil {
		logger = logging.Default()
	}
	return &Controller{
		sessions:  sessions,
		catalog:   cat,
		roster:    ros,
		clients:   clients,
		platform:  platform,
		publisher: publisher,
		orgID:     orgID,
		metrics:   m,
		logger:    logger,
	}
}

// Open starts a new session on the service step.
func (c *Controller) Open(ctx context.Context, variant Variant) (*Draft, error) {
	if variant != VariantQuick {
		variant = VariantFull
	}
	d := NewDraft(variant)
	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, err
	}
	c.metrics.ObserveSessionStarted(string(variant))
	return d, nil
}

// Get loads the current draft.
func (c *Controller) Get(ctx context.Context, sessionID string) (*Draft, error) {
	return c.sessions.Load(ctx, sessionID)
}

// Close discards the session. The draft is gone; there is no saved-draft
// recovery.
func (c *Controller) Close(ctx context.Context, sessionID string) error {
	return c.sessions.Delete(ctx, sessionID)
}

// NavigateTo jumps to a previously reached step (breadcrumb navigation).
// Forward jumps past the watermark are rejected.
func (c *Controller) NavigateTo(ctx context.Context, sessionID string, step Step) (*Draft, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	idx := StepIndex(d.Variant, step)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}
	if idx > d.HighestStepReached {
		return nil, fmt.Errorf("wizard: step %s not yet reached", step)
	}
	d.Step = step
	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// GoBack steps backward according to the active flow mode.
func (c *Controller) GoBack(ctx context.Context, sessionID string) (*Draft, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d.GoBack()
	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ToggleService adds or removes a service. In the stylist-first flow an added
// service is cross-checked against the pre-selected stylist's qualifications;
// an unqualified add still goes through, but the stylist pre-selection is
// cleared and the returned warning explains why.
func (c *Controller) ToggleService(ctx context.Context, sessionID, serviceID string) (*Draft, string, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	added := d.ToggleService(serviceID)

	var warning string
	if added && d.Mode == StylistFirstFlow && d.PreSelected != nil {
		set, err := c.roster.QualifiedServices(ctx, d.PreSelected.UserID)
		if err != nil {
			return nil, "", err
		}
		if !set.Allows(serviceID) {
			warning = fmt.Sprintf("%s isn't qualified for that service, so the stylist selection was cleared.", d.PreSelected.Name)
			d.ClearPreSelectedStylist()
		}
	}

	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, "", err
	}
	return d, warning, nil
}

// CompleteServices leaves the service step. Selecting no services is valid.
func (c *Controller) CompleteServices(ctx context.Context, sessionID string) (*Draft, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next := c.nextAfterServices(d)
	if err := d.NavigateTo(next); err != nil {
		return nil, err
	}
	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (c *Controller) nextAfterServices(d *Draft) Step {
	if d.Mode == StylistFirstFlow {
		// Stylist and (usually) location are already settled.
		if d.SelectedLocation == nil {
			return StepLocation
		}
		return StepClient
	}
	if d.Variant == VariantQuick {
		return StepClient
	}
	return StepLocation
}

// SelectLocation records the branch and advances. In the stylist-first flow
// the seeded stylist mapping is re-resolved for the chosen branch.
func (c *Controller) SelectLocation(ctx context.Context, sessionID string, loc roster.Location) (*Draft, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	d.SelectedLocation = &loc
	d.LocationAutoSelected = false

	next := StepClient
	if d.Mode == StylistFirstFlow && d.PreSelected != nil {
		m, err := c.roster.MappingFor(ctx, d.PreSelected.UserID, loc.PhorestBranchID)
		if err != nil {
			return nil, err
		}
		d.SelectedStylist = m
		d.PreSelected.PhorestStaffID = m.PhorestStaffID
		// The stylist was picked before services; return to the service step.
		next = StepService
	}

	if err := d.NavigateTo(next); err != nil {
		return nil, err
	}
	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SelectClient records the client. A banned client is still selectable; the
// ban reason comes back as a warning for the confirmation prompt.
func (c *Controller) SelectClient(ctx context.Context, sessionID, clientID string) (*Draft, string, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	client, err := c.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, "", err
	}
	d.SelectedClient = client

	var warning string
	if client.IsBanned {
		warning = fmt.Sprintf("%s is flagged as banned", client.Name)
		if client.BanReason != "" {
			warning += ": " + client.BanReason
		}
	}

	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, "", err
	}
	return d, warning, nil
}

// ProceedWithClient advances past the client step once a client is selected
// (and any ban warning acknowledged).
func (c *Controller) ProceedWithClient(ctx context.Context, sessionID string) (*Draft, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if d.SelectedClient == nil {
		return nil, errors.New("wizard: no client selected")
	}

	next := StepStylist
	if d.Mode == StylistFirstFlow {
		// Stylist already chosen up front; skip straight to confirm.
		next = StepConfirm
	}
	if err := d.NavigateTo(next); err != nil {
		return nil, err
	}
	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// StylistOptions is the stylist step payload: the branch roster filtered to
// staff qualified for every selected service, sorted by level descending,
// plus an auto-selection when the draft has no stylist yet.
type StylistOptions struct {
	Stylists []roster.StaffMapping `json:"stylists"`
	// AutoSelected is the suggested stylist, nil when the list is empty or a
	// stylist is already chosen.
	AutoSelected *roster.StaffMapping `json:"auto_selected,omitempty"`
	// AutoSelectReason is "preferred" when the client's preferred stylist is
	// available, otherwise "highest".
	AutoSelectReason string `json:"auto_select_reason,omitempty"`
}

// StylistsForStep computes the stylist step options for the session.
func (c *Controller) StylistsForStep(ctx context.Context, sessionID string) (*StylistOptions, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if d.SelectedLocation == nil {
		return nil, errors.New("wizard: location must be selected before stylists")
	}

	branchID := d.SelectedLocation.PhorestBranchID
	staff, err := c.roster.StaffForLocation(ctx, branchID)
	if err != nil {
		return nil, err
	}
	qual, err := c.roster.Qualifications(ctx, d.SelectedServiceIDs, branchID)
	if err != nil {
		return nil, err
	}

	opts := &StylistOptions{Stylists: roster.FilterQualified(staff, qual)}
	if d.SelectedStylist != nil || len(opts.Stylists) == 0 {
		return opts, nil
	}

	if d.SelectedClient != nil && d.SelectedClient.PreferredStylistID != "" {
		for i := range opts.Stylists {
			if opts.Stylists[i].UserID == d.SelectedClient.PreferredStylistID {
				opts.AutoSelected = &opts.Stylists[i]
				opts.AutoSelectReason = "preferred"
				return opts, nil
			}
		}
	}
	// The list is already sorted descending by level.
	opts.AutoSelected = &opts.Stylists[0]
	opts.AutoSelectReason = "highest"
	return opts, nil
}

// SelectStylist records the stylist and advances to confirm.
func (c *Controller) SelectStylist(ctx context.Context, sessionID string, m roster.StaffMapping) (*Draft, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d.SelectedStylist = &m
	if err := d.NavigateTo(StepConfirm); err != nil {
		return nil, err
	}
	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// EnterStylistFirst switches the session to the stylist-first branch. When
// the stylist works at exactly one branch, that branch is auto-selected and
// the location step is skipped; the session lands on the service step either
// way (or on location when a choice is needed).
func (c *Controller) EnterStylistFirst(ctx context.Context, sessionID, userID string) (*Draft, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	locations, err := c.roster.LocationsForStylist(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("wizard: stylist %s has no branch: %w", userID, roster.ErrMappingNotFound)
	}

	m, err := c.roster.MappingFor(ctx, userID, locations[0].PhorestBranchID)
	if err != nil {
		return nil, err
	}
	d.EnterStylistFirst(*m)

	if len(locations) == 1 {
		loc := locations[0]
		d.SelectedLocation = &loc
		d.LocationAutoSelected = true
		if err := d.NavigateTo(StepService); err != nil {
			return nil, err
		}
	} else {
		d.SelectedLocation = nil
		if err := d.NavigateTo(StepLocation); err != nil {
			return nil, err
		}
	}

	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ClearPreSelected exits the stylist-first branch and reverts to normal flow.
func (c *Controller) ClearPreSelected(ctx context.Context, sessionID string) (*Draft, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d.ClearPreSelectedStylist()
	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Summary is the confirm-step payload.
type Summary struct {
	Draft  *Draft            `json:"draft"`
	Totals Totals            `json:"totals"`
	Items  []catalog.Service `json:"items"`
	// RecurrenceEndDate previews the final occurrence date when a recurrence
	// rule is set and a start time is known.
	RecurrenceEndDate string `json:"recurrence_end_date,omitempty"`
}

// Summarize aggregates totals for the confirm step, applying level-based
// prices when the stylist's level has overrides.
func (c *Controller) Summarize(ctx context.Context, sessionID string, startTime time.Time) (*Summary, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	services, err := c.catalog.GetServices(ctx, d.SelectedServiceIDs)
	if err != nil {
		return nil, err
	}

	var overrides map[string]float64
	if slug := roster.LevelSlug(d.StylistLevelText()); slug != "" {
		overrides, err = c.catalog.LevelPrices(ctx, d.SelectedServiceIDs, slug)
		if err != nil {
			return nil, err
		}
	}

	s := &Summary{
		Draft:  d,
		Totals: AggregateTotals(services, overrides),
		Items:  services,
	}
	if d.Recurrence != nil && !startTime.IsZero() {
		s.RecurrenceEndDate = d.Recurrence.PreviewEndDate(startTime).Format("2006-01-02")
	}
	return s, nil
}

// SubmitInput is the confirm-step submission payload.
type SubmitInput struct {
	StartTime string `json:"start_time"` // ISO8601
	Notes     string `json:"notes,omitempty"`
}

// SubmitResult reports the outcome of a successful submission.
type SubmitResult struct {
	AppointmentID string `json:"appointment_id"`
	// RecurringMessage summarizes recurring expansion, including partial
	// success ("Booked 4 of 6 appointments; 2 skipped due to conflicts").
	RecurringMessage string `json:"recurring_message,omitempty"`
}

// Submit creates the booking through the bridge. The session survives a
// failed submit untouched so the user can retry; a successful submit marks
// the draft submitted, making the operation idempotent per session.
func (c *Controller) Submit(ctx context.Context, sessionID string, in SubmitInput) (*SubmitResult, error) {
	started := time.Now()
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if d.Submitted {
		return nil, ErrAlreadySubmitted
	}
	if !d.SubmitEligible() || in.StartTime == "" {
		c.metrics.ObserveSubmission("rejected", time.Since(started).Seconds())
		return nil, ErrMissingRequiredData
	}

	mapping, err := c.resolveMapping(ctx, d)
	if err != nil {
		// Local failure: nothing was sent to the backend.
		c.metrics.ObserveSubmission("rejected", time.Since(started).Seconds())
		return nil, err
	}

	services, err := c.catalog.GetServices(ctx, d.SelectedServiceIDs)
	if err != nil {
		return nil, err
	}
	phorestServiceIDs := make([]string, 0, len(services))
	serviceNames := make([]string, 0, len(services))
	var totalPrice float64
	for _, s := range services {
		phorestServiceIDs = append(phorestServiceIDs, s.PhorestServiceID)
		serviceNames = append(serviceNames, s.Name)
		totalPrice += s.BasePrice()
	}

	resp, err := c.platform.CreateBooking(ctx, phorest.CreateBookingRequest{
		BranchID:   d.SelectedLocation.PhorestBranchID,
		ClientID:   d.SelectedClient.PhorestClientID,
		StaffID:    mapping.PhorestStaffID,
		ServiceIDs: phorestServiceIDs,
		StartTime:  in.StartTime,
		Notes:      in.Notes,
	})
	if err != nil {
		// Draft state is preserved; the backend's message travels verbatim.
		c.metrics.ObserveSubmission("backend_error", time.Since(started).Seconds())
		return nil, err
	}

	result := &SubmitResult{AppointmentID: resp.AppointmentID}
	if d.Recurrence != nil {
		result.RecurringMessage = c.expandRecurrence(ctx, resp.AppointmentID, *d.Recurrence)
	}

	d.Submitted = true
	d.AppointmentID = resp.AppointmentID
	if err := c.sessions.Save(ctx, d); err != nil {
		c.logger.Error("wizard: booking created but draft save failed",
			"session_id", sessionID, "appointment_id", resp.AppointmentID, "error", err)
	}

	c.enqueueConfirmation(ctx, d, mapping, serviceNames, totalPrice, in.StartTime, result.RecurringMessage)
	c.metrics.ObserveSubmission("success", time.Since(started).Seconds())
	return result, nil
}

// resolveMapping finds the Phorest staff row for the drafted stylist at the
// selected branch: the stylist-first pre-selection wins, then the normal-flow
// selection, and a branch mismatch falls back to a roster lookup by user.
func (c *Controller) resolveMapping(ctx context.Context, d *Draft) (*roster.StaffMapping, error) {
	branchID := d.SelectedLocation.PhorestBranchID

	var userID string
	var known *roster.StaffMapping
	switch {
	case d.PreSelected != nil:
		userID = d.PreSelected.UserID
		if d.SelectedStylist != nil && d.SelectedStylist.PhorestBranchID == branchID {
			known = d.SelectedStylist
		}
	case d.SelectedStylist != nil:
		userID = d.SelectedStylist.UserID
		if d.SelectedStylist.PhorestBranchID == branchID {
			known = d.SelectedStylist
		}
	default:
		return nil, ErrMissingRequiredData
	}

	if known != nil {
		return known, nil
	}
	m, err := c.roster.MappingFor(ctx, userID, branchID)
	if err != nil {
		return nil, fmt.Errorf("wizard: cannot submit without a staff mapping for this branch: %w", err)
	}
	return m, nil
}

func (c *Controller) expandRecurrence(ctx context.Context, appointmentID string, rule recurrence.Rule) string {
	resp, err := c.platform.ExpandRecurrence(ctx, phorest.RecurringRequest{
		FirstAppointmentID: appointmentID,
		RecurrenceRule: phorest.RecurrenceRule{
			Frequency:   string(rule.Frequency),
			Occurrences: rule.Occurrences,
		},
	})
	if err != nil {
		// The first appointment exists; the series just didn't expand.
		c.logger.Error("wizard: recurring expansion failed",
			"appointment_id", appointmentID, "error", err)
		return "The appointment was booked, but the recurring series could not be created: " + err.Error()
	}
	if resp.SkippedCount > 0 {
		return fmt.Sprintf("Booked %d of %d appointments; %d skipped due to conflicts.",
			resp.CreatedCount, resp.TotalRequested, resp.SkippedCount)
	}
	return fmt.Sprintf("Booked all %d appointments in the series.", resp.CreatedCount)
}

func (c *Controller) enqueueConfirmation(ctx context.Context, d *Draft, m *roster.StaffMapping, serviceNames []string, totalPrice float64, startTime, recurringNote string) {
	if c.publisher == nil {
		return
	}
	job := jobs.BookingConfirmation{
		AppointmentID: d.AppointmentID,
		ClientName:    d.SelectedClient.Name,
		ClientEmail:   d.SelectedClient.Email,
		StylistName:   m.DisplayName,
		LocationName:  d.SelectedLocation.Name,
		ServiceNames:  serviceNames,
		StartTime:     startTime,
		TotalPrice:    totalPrice,
		RecurringNote: recurringNote,
	}
	if err := c.publisher.EnqueueBookingConfirmation(ctx, job); err != nil {
		// The booking stands regardless.
		c.logger.Error("wizard: confirmation enqueue failed",
			"appointment_id", d.AppointmentID, "error", err)
	}
}

// SetRecurrence validates and stores a recurrence rule on the draft, or
// clears it when rule is nil.
func (c *Controller) SetRecurrence(ctx context.Context, sessionID string, rule *recurrence.Rule) (*Draft, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rule != nil {
		if err := rule.Validate(); err != nil {
			return nil, err
		}
	}
	d.Recurrence = rule
	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// EnterBreakEntry switches the session into the break entry flow.
func (c *Controller) EnterBreakEntry(ctx context.Context, sessionID string) (*Draft, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d.Mode = BreakEntryFlow
	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SubmitBreak validates and sends a break request through the bridge, then
// returns the session to normal flow.
func (c *Controller) SubmitBreak(ctx context.Context, sessionID string, form BreakForm) (*Draft, error) {
	d, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if d.Mode != BreakEntryFlow {
		return nil, ErrNotInBreakFlow
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	if _, err := c.platform.RequestBreak(ctx, phorest.BreakRequest{
		UserID:              form.UserID,
		OrganizationID:      c.orgID,
		StartDate:           form.StartDate,
		EndDate:             form.EndDate,
		StartTime:           form.StartTime,
		EndTime:             form.EndTime,
		IsFullDay:           form.IsFullDay,
		Reason:              form.Reason,
		Notes:               form.Notes,
		BlocksOnlineBooking: form.BlocksOnlineBooking,
	}); err != nil {
		return nil, err
	}

	d.Mode = NormalFlow
	if err := c.sessions.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
