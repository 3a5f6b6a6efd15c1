package scheduling

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/delsurprop/backoffice/pkg/logging"
)

// Handler exposes the scheduler over HTTP.
type Handler struct {
	scheduler *Scheduler
	validate  *validator.Validate
	logger    *logging.Logger
}

func NewHandler(scheduler *Scheduler, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		scheduler: scheduler,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Mount registers the appointment routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.ListAgentDay)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type createAppointmentRequest struct {
	PropertyID      string     `json:"property_id" validate:"required,uuid4"`
	ClientID        string     `json:"client_id" validate:"required,uuid4"`
	AgentID         string     `json:"agent_id" validate:"required,uuid4"`
	ScheduledAt     *time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int        `json:"duration_minutes" validate:"required"`
	Status          string     `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	Notes           string     `json:"notes"`
}

// Create handles POST /appointments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appt, err := h.scheduler.Book(r.Context(), BookRequest{
		PropertyID:  uuid.MustParse(req.PropertyID),
		ClientID:    uuid.MustParse(req.ClientID),
		AgentID:     uuid.MustParse(req.AgentID),
		ScheduledAt: *req.ScheduledAt,
		Duration:    req.DurationMinutes,
		Status:      Status(req.Status),
		Notes:       req.Notes,
	})
	if err != nil {
		h.writeSchedulingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// Get handles GET /appointments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	appt, err := h.scheduler.Get(r.Context(), id)
	if err != nil {
		h.writeSchedulingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

type agentDayResponse struct {
	Visits []AgentVisit `json:"visits"`
	Count  int          `json:"count"`
}

// ListAgentDay handles GET /appointments?agent_id=...&date=2006-01-02.
func (h *Handler) ListAgentDay(w http.ResponseWriter, r *http.Request) {
	agentID, err := uuid.Parse(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "agent_id is required")
		return
	}
	// The date names a calendar day in the business timezone.
	loc := h.scheduler.hours.Location()
	day := time.Now().In(loc)
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err = time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	visits, err := h.scheduler.AgentDay(r.Context(), agentID, day)
	if err != nil {
		h.writeSchedulingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agentDayResponse{Visits: visits, Count: len(visits)})
}

type updateAppointmentRequest struct {
	PropertyID      *string    `json:"property_id" validate:"omitempty,uuid4"`
	ClientID        *string    `json:"client_id" validate:"omitempty,uuid4"`
	AgentID         *string    `json:"agent_id" validate:"omitempty,uuid4"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	Status          *string    `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	Notes           *string    `json:"notes"`
}

// Update handles PATCH /appointments/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	var req updateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upd := UpdateRequest{
		ScheduledAt: req.ScheduledAt,
		Duration:    req.DurationMinutes,
		Notes:       req.Notes,
	}
	if req.PropertyID != nil {
		pid := uuid.MustParse(*req.PropertyID)
		upd.PropertyID = &pid
	}
	if req.ClientID != nil {
		cid := uuid.MustParse(*req.ClientID)
		upd.ClientID = &cid
	}
	if req.AgentID != nil {
		aid := uuid.MustParse(*req.AgentID)
		upd.AgentID = &aid
	}
	if req.Status != nil {
		st := Status(*req.Status)
		upd.Status = &st
	}

	appt, err := h.scheduler.Update(r.Context(), id, upd)
	if err != nil {
		h.writeSchedulingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Delete handles DELETE /appointments/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	if err := h.scheduler.Delete(r.Context(), id); err != nil {
		h.writeSchedulingError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeSchedulingError maps the typed scheduling outcomes onto HTTP statuses
// with their user-facing message, and hides infrastructure faults behind a
// generic 500.
func (h *Handler) writeSchedulingError(w http.ResponseWriter, err error) {
	var (
		ve *ValidationError
		be *BusinessHoursError
		ce *ConflictError
		ne *NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &be):
		writeError(w, http.StatusUnprocessableEntity, be.Error())
	case errors.As(err, &ce):
		writeError(w, http.StatusConflict, ce.Error())
	case errors.As(err, &ne):
		writeError(w, http.StatusNotFound, ne.Error())
	default:
		h.logger.Error("scheduling request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
