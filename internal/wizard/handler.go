package wizard

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/salonsuite/platform/internal/directory"
	"github.com/salonsuite/platform/internal/phorest"
	"github.com/salonsuite/platform/internal/recurrence"
	"github.com/salonsuite/platform/internal/roster"
	"github.com/salonsuite/platform/pkg/logging"
)

// Handler serves the wizard session endpoints.
type Handler struct {
	controller *Controller
	logger     *logging.Logger
}

// NewHandler creates a wizard handler.
func NewHandler(controller *Controller, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{controller: controller, logger: logger}
}

// Routes mounts the wizard endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.OpenSession)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.CloseSession)
		r.Post("/navigate", h.Navigate)
		r.Post("/back", h.Back)
		r.Post("/services/toggle", h.ToggleService)
		r.Post("/services/complete", h.CompleteServices)
		r.Post("/location", h.SelectLocation)
		r.Post("/client", h.SelectClient)
		r.Post("/client/proceed", h.ProceedWithClient)
		r.Get("/stylists", h.StylistOptionsForStep)
		r.Post("/stylist", h.SelectStylist)
		r.Post("/stylist-first", h.EnterStylistFirst)
		r.Delete("/stylist-first", h.ClearPreSelected)
		r.Post("/recurrence", h.SetRecurrence)
		r.Get("/summary", h.Summary)
		r.Post("/submit", h.Submit)
		r.Post("/break", h.EnterBreakEntry)
		r.Post("/break/submit", h.SubmitBreak)
	})
	return r
}

type draftResponse struct {
	Draft   *Draft `json:"draft"`
	Warning string `json:"warning,omitempty"`
}

// OpenSession handles POST /wizard. Body: {"variant": "full"|"quick"}.
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Variant Variant `json:"variant"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&in)
	}
	d, err := h.controller.Open(r.Context(), in.Variant)
	if err != nil {
		h.logger.Error("wizard: open session failed", "error", err)
		http.Error(w, "could not open session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, draftResponse{Draft: d})
}

// GetSession handles GET /wizard/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	d, err := h.controller.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err, "load session")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d})
}

// CloseSession handles DELETE /wizard/{sessionID}. The draft is discarded.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Close(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondError(w, err, "close session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Navigate handles POST /wizard/{sessionID}/navigate. Body: {"step": "..."}.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Step Step `json:"step"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	d, err := h.controller.NavigateTo(r.Context(), chi.URLParam(r, "sessionID"), in.Step)
	if err != nil {
		h.respondError(w, err, "navigate")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d})
}

// Back handles POST /wizard/{sessionID}/back.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	d, err := h.controller.GoBack(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err, "back")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d})
}

// ToggleService handles POST /wizard/{sessionID}/services/toggle.
func (h *Handler) ToggleService(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ServiceID string `json:"service_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ServiceID == "" {
		http.Error(w, "service_id required", http.StatusBadRequest)
		return
	}
	d, warning, err := h.controller.ToggleService(r.Context(), chi.URLParam(r, "sessionID"), in.ServiceID)
	if err != nil {
		h.respondError(w, err, "toggle service")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d, Warning: warning})
}

// CompleteServices handles POST /wizard/{sessionID}/services/complete.
func (h *Handler) CompleteServices(w http.ResponseWriter, r *http.Request) {
	d, err := h.controller.CompleteServices(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err, "complete services")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d})
}

// SelectLocation handles POST /wizard/{sessionID}/location.
func (h *Handler) SelectLocation(w http.ResponseWriter, r *http.Request) {
	var loc roster.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil || loc.PhorestBranchID == "" {
		http.Error(w, "location with phorest_branch_id required", http.StatusBadRequest)
		return
	}
	d, err := h.controller.SelectLocation(r.Context(), chi.URLParam(r, "sessionID"), loc)
	if err != nil {
		h.respondError(w, err, "select location")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d})
}

// SelectClient handles POST /wizard/{sessionID}/client. A banned client
// comes back with a warning; the caller confirms via /client/proceed.
func (h *Handler) SelectClient(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ClientID string `json:"client_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ClientID == "" {
		http.Error(w, "client_id required", http.StatusBadRequest)
		return
	}
	d, warning, err := h.controller.SelectClient(r.Context(), chi.URLParam(r, "sessionID"), in.ClientID)
	if err != nil {
		h.respondError(w, err, "select client")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d, Warning: warning})
}

// ProceedWithClient handles POST /wizard/{sessionID}/client/proceed.
func (h *Handler) ProceedWithClient(w http.ResponseWriter, r *http.Request) {
	d, err := h.controller.ProceedWithClient(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err, "proceed with client")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d})
}

// StylistOptionsForStep handles GET /wizard/{sessionID}/stylists.
func (h *Handler) StylistOptionsForStep(w http.ResponseWriter, r *http.Request) {
	opts, err := h.controller.StylistsForStep(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err, "stylist options")
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// SelectStylist handles POST /wizard/{sessionID}/stylist.
func (h *Handler) SelectStylist(w http.ResponseWriter, r *http.Request) {
	var m roster.StaffMapping
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil || m.UserID == "" {
		http.Error(w, "stylist with user_id required", http.StatusBadRequest)
		return
	}
	d, err := h.controller.SelectStylist(r.Context(), chi.URLParam(r, "sessionID"), m)
	if err != nil {
		h.respondError(w, err, "select stylist")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d})
}

// EnterStylistFirst handles POST /wizard/{sessionID}/stylist-first.
func (h *Handler) EnterStylistFirst(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.UserID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}
	d, err := h.controller.EnterStylistFirst(r.Context(), chi.URLParam(r, "sessionID"), in.UserID)
	if err != nil {
		h.respondError(w, err, "enter stylist-first")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d})
}

// ClearPreSelected handles DELETE /wizard/{sessionID}/stylist-first.
func (h *Handler) ClearPreSelected(w http.ResponseWriter, r *http.Request) {
	d, err := h.controller.ClearPreSelected(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err, "clear pre-selection")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d})
}

// SetRecurrence handles POST /wizard/{sessionID}/recurrence. A null rule
// clears the selection.
func (h *Handler) SetRecurrence(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Rule *recurrence.Rule `json:"rule"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	d, err := h.controller.SetRecurrence(r.Context(), chi.URLParam(r, "sessionID"), in.Rule)
	if err != nil {
		h.respondError(w, err, "set recurrence")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d})
}

// Summary handles GET /wizard/{sessionID}/summary?start_time=RFC3339.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	var start time.Time
	if raw := r.URL.Query().Get("start_time"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "invalid start_time", http.StatusBadRequest)
			return
		}
		start = parsed
	}
	s, err := h.controller.Summarize(r.Context(), chi.URLParam(r, "sessionID"), start)
	if err != nil {
		h.respondError(w, err, "summary")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Submit handles POST /wizard/{sessionID}/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var in SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	result, err := h.controller.Submit(r.Context(), chi.URLParam(r, "sessionID"), in)
	if err != nil {
		h.respondError(w, err, "submit")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// EnterBreakEntry handles POST /wizard/{sessionID}/break.
func (h *Handler) EnterBreakEntry(w http.ResponseWriter, r *http.Request) {
	d, err := h.controller.EnterBreakEntry(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err, "enter break entry")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d})
}

// SubmitBreak handles POST /wizard/{sessionID}/break/submit.
func (h *Handler) SubmitBreak(w http.ResponseWriter, r *http.Request) {
	var form BreakForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	d, err := h.controller.SubmitBreak(r.Context(), chi.URLParam(r, "sessionID"), form)
	if err != nil {
		h.respondError(w, err, "submit break")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: d})
}

// respondError maps controller errors onto HTTP statuses. Backend rejections
// travel verbatim in a 422 body, matching how the rest of the API surfaces
// bridge errors.
func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case errors.Is(err, ErrAlreadySubmitted):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
	case errors.Is(err, ErrMissingRequiredData), errors.Is(err, ErrUnknownStep), errors.Is(err, ErrNotInBreakFlow):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, directory.ErrClientNotFound):
		http.Error(w, "client not found", http.StatusNotFound)
	case errors.Is(err, roster.ErrMappingNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		var backendErr *phorest.BackendError
		if errors.As(err, &backendErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": backendErr.Message})
			return
		}
		h.logger.Error("wizard: "+op+" failed", "error", err)
		http.Error(w, op+" failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
