// Package wizard implements the multi-step booking flow state machine: step
// sequencing with a highest-step watermark, the stylist-first branch, price
// and duration aggregation, and submission through the booking bridge. The
// machine is pure; persistence and transport live in SessionStore and Handler.
package wizard

// Step identifies one screen in the booking flow.
type Step string

const (
	StepService  Step = "service"
	StepLocation Step = "location"
	StepClient   Step = "client"
	StepStylist  Step = "stylist"
	StepConfirm  Step = "confirm"
)

// Variant selects which canonical step list a session uses.
type Variant string

const (
	// VariantFull is the default wizard: service, location, client, stylist,
	// confirm.
	VariantFull Variant = "full"
	// VariantQuick is the quick-booking popover, which is branch-scoped and
	// has no location step.
	VariantQuick Variant = "quick"
)

// FlowMode is the tagged flow discriminant. Exactly one mode is active at a
// time; transitions switch on it exhaustively instead of juggling booleans.
type FlowMode string

const (
	NormalFlow       FlowMode = "normal"
	StylistFirstFlow FlowMode = "stylist_first"
	BreakEntryFlow   FlowMode = "break_entry"
)

var (
	fullOrder  = []Step{StepService, StepLocation, StepClient, StepStylist, StepConfirm}
	quickOrder = []Step{StepService, StepClient, StepStylist, StepConfirm}

	// stylistFirstBack overrides back navigation while the stylist-first
	// branch is active. The effective traversal is stylist pick (on the
	// service screen) -> location -> service -> client -> confirm, with the
	// stylist step skipped, so "back" follows that order rather than the
	// canonical list. Back from location returns to the service screen where
	// the stylist picker lives.
	stylistFirstBack = map[Step]Step{
		StepConfirm:  StepClient,
		StepClient:   StepService,
		StepService:  StepLocation,
		StepLocation: StepService,
	}
)

// StepOrder returns the canonical step list for a variant.
func StepOrder(v Variant) []Step {
	if v == VariantQuick {
		return quickOrder
	}
	return fullOrder
}

// StepIndex returns the position of step in the variant's canonical list, or
// -1 for a step the variant doesn't have.
func StepIndex(v Variant, step Step) int {
	for i, s := range StepOrder(v) {
		if s == step {
			return i
		}
	}
	return -1
}
