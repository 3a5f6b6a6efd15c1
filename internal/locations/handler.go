package locations

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/delsurprop/backoffice/pkg/logging"
)

// Handler handles HTTP requests for the location tree
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Mount registers the location routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.ListByLevel)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/children", h.ListChildren)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	loc, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid location id", http.StatusBadRequest)
		return
	}
	loc, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// ListByLevel handles GET /locations?level=city.
func (h *Handler) ListByLevel(w http.ResponseWriter, r *http.Request) {
	level := Level(r.URL.Query().Get("level"))
	if level == "" {
		level = LevelCountry
	}
	if !level.Valid() {
		http.Error(w, ErrInvalidLevel.Error(), http.StatusBadRequest)
		return
	}
	out, err := h.repo.ListByLevel(r.Context(), level)
	if err != nil {
		h.logger.Error("failed to list locations", "error", err, "level", level)
		http.Error(w, "failed to list locations", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": out, "count": len(out)})
}

func (h *Handler) ListChildren(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid location id", http.StatusBadRequest)
		return
	}
	out, err := h.repo.ListChildren(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": out, "count": len(out)})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrInvalidLevel),
		errors.Is(err, ErrInvalidParent):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("location request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
