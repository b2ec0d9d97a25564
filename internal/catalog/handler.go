package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/salonsuite/platform/pkg/logging"
)

// Reader is the repository surface the menu endpoints need.
type Reader interface {
	ListServices(ctx context.Context) ([]Service, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// Handler serves the service menu the wizard's service step renders.
type Handler struct {
	repo   Reader
	logger *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(repo Reader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes mounts the menu endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListServices)
	r.Get("/categories", h.ListCategories)
	return r
}

// ListServices handles GET /services?category=.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.repo.ListServices(r.Context())
	if err != nil {
		h.logger.Error("catalog: list services failed", "error", err)
		http.Error(w, "menu unavailable", http.StatusInternalServerError)
		return
	}

	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filtered := make([]Service, 0, len(services))
		for _, s := range services {
			if strings.EqualFold(s.Category, category) {
				filtered = append(filtered, s)
			}
		}
		services = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

// ListCategories handles GET /services/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("catalog: list categories failed", "error", err)
		http.Error(w, "menu unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
