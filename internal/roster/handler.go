package roster

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/salonsuite/platform/pkg/logging"
)

// Reader is the repository surface the roster endpoints need.
type Reader interface {
	Locations(ctx context.Context) ([]Location, error)
	LocationsForStylist(ctx context.Context, userID string) ([]Location, error)
	AllStaff(ctx context.Context) ([]StaffMapping, error)
	StaffForLocation(ctx context.Context, branchID string) ([]StaffMapping, error)
}

// Handler serves the location and staff lists behind the wizard's location
// and stylist steps.
type Handler struct {
	repo   Reader
	logger *logging.Logger
}

// NewHandler creates a roster handler.
func NewHandler(repo Reader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes mounts the roster endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/locations", h.ListLocations)
	r.Get("/staff", h.ListStaff)
	return r
}

// ListLocations handles GET /roster/locations?stylist_id=. With stylist_id
// the list narrows to branches that stylist works at, which is what the
// stylist-first location step shows.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	var (
		locations []Location
		err       error
	)
	if stylistID := strings.TrimSpace(r.URL.Query().Get("stylist_id")); stylistID != "" {
		locations, err = h.repo.LocationsForStylist(r.Context(), stylistID)
	} else {
		locations, err = h.repo.Locations(r.Context())
	}
	if err != nil {
		h.logger.Error("roster: list locations failed", "error", err)
		http.Error(w, "locations unavailable", http.StatusInternalServerError)
		return
	}
	if locations == nil {
		locations = []Location{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": locations})
}

// ListStaff handles GET /roster/staff?location=. Without a location the full
// cross-branch roster comes back.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	var (
		staff []StaffMapping
		err   error
	)
	if branchID := strings.TrimSpace(r.URL.Query().Get("location")); branchID != "" {
		staff, err = h.repo.StaffForLocation(r.Context(), branchID)
	} else {
		staff, err = h.repo.AllStaff(r.Context())
	}
	if err != nil {
		h.logger.Error("roster: list staff failed", "error", err)
		http.Error(w, "roster unavailable", http.StatusInternalServerError)
		return
	}
	if staff == nil {
		staff = []StaffMapping{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": staff})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
