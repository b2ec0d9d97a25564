package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/salonsuite/platform/internal/phorest"
	"github.com/salonsuite/platform/pkg/logging"
)

// ClientCreator is the bridge call that owns client creation.
type ClientCreator interface {
	CreateClient(ctx context.Context, req phorest.CreateClientRequest) (*phorest.CreateClientResponse, error)
}

// Reader is the repository surface the handler needs.
type Reader interface {
	GetByID(ctx context.Context, id string) (*Client, error)
	Search(ctx context.Context, query string, limit int) ([]Client, error)
	FindDuplicates(ctx context.Context, email, phone string) ([]Client, error)
}

// Handler serves the client book endpoints.
type Handler struct {
	repo    Reader
	creator ClientCreator
	logger  *logging.Logger
}

// NewHandler creates a directory handler.
func NewHandler(repo Reader, creator ClientCreator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, creator: creator, logger: logger}
}

// Routes mounts the directory endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.SearchClients)
	r.Get("/{clientID}", h.GetClient)
	r.Get("/duplicates", h.FindDuplicates)
	r.Post("/", h.CreateClient)
	return r
}

// SearchClients handles GET /clients?q=&limit=.
func (h *Handler) SearchClients(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "q parameter required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	clients, err := h.repo.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("directory: search failed", "error", err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

// GetClient handles GET /clients/{clientID}.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "clientID")
	client, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			http.Error(w, "client not found", http.StatusNotFound)
			return
		}
		h.logger.Error("directory: get client failed", "error", err, "client_id", id)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// FindDuplicates handles GET /clients/duplicates?email=&phone=. The widget
// calls this after its debounce while the operator types.
func (h *Handler) FindDuplicates(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if email == "" && phone == "" {
		writeJSON(w, http.StatusOK, map[string]any{"clients": []Client{}})
		return
	}
	clients, err := h.repo.FindDuplicates(r.Context(), email, phone)
	if err != nil {
		h.logger.Error("directory: duplicate lookup failed", "error", err)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

// CreateClient handles POST /clients. Creation happens in the backend; the
// synced read model picks the row up afterwards.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var in CreateClientInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.creator.CreateClient(r.Context(), phorest.CreateClientRequest{
		BranchID:           in.BranchID,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Gender:             in.Gender,
		Email:              in.Email,
		Phone:              in.Phone,
		Notes:              in.Notes,
		Birthday:           in.Birthday,
		PreferredStylistID: in.PreferredStylistID,
	})
	if err != nil {
		var backendErr *phorest.BackendError
		if errors.As(err, &backendErr) {
			// Business-rule rejection (e.g. duplicate): backend text verbatim.
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": backendErr.Message})
			return
		}
		h.logger.Error("directory: create client failed", "error", err)
		http.Error(w, "client creation failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusCreated, resp.Client)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
