package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/careconnect/scheduler/internal/appointments"
	"github.com/careconnect/scheduler/internal/booking"
	"github.com/careconnect/scheduler/internal/identity"
	"github.com/careconnect/scheduler/internal/users"
	"github.com/careconnect/scheduler/pkg/logging"
)

// AppointmentsHandler exposes the booking flow over HTTP. The error
// taxonomy is translated to status codes here and nowhere else.
type AppointmentsHandler struct {
	service *booking.Service
	store   appointments.Store
	logger  *logging.Logger
}

// NewAppointmentsHandler creates an appointments handler.
func NewAppointmentsHandler(service *booking.Service, store appointments.Store, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{
		service: service,
		store:   store,
		logger:  logger,
	}
}

// Create handles POST /api/appointments requests.
func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req booking.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.PatientID = principal.UserID

	result, err := h.service.Book(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, booking.ErrNoDoctorAvailable):
			http.Error(w, "no doctors found for the recommended specialization and no general physicians available", http.StatusNotFound)
		case errors.Is(err, booking.ErrSlotConflict):
			http.Error(w, "time slot is taken by another high-priority case, please choose another time", http.StatusConflict)
		default:
			h.logger.Error("booking failed", "error", err, "patient_id", principal.UserID)
			http.Error(w, "booking failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

// ListResponse is the response for listing appointments.
type ListResponse struct {
	Appointments []appointments.Appointment `json:"appointments"`
	Count        int                        `json:"count"`
}

// List handles GET /api/appointments requests. Doctors see their schedule
// ordered most urgent first; patients see their own bookings by start time.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var (
		list []appointments.Appointment
		err  error
	)
	if principal.Role == string(users.RoleDoctor) {
		list, err = h.store.ListByDoctor(r.Context(), principal.UserID)
	} else {
		list, err = h.store.ListByPatient(r.Context(), principal.UserID)
	}
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "user_id", principal.UserID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{Appointments: list, Count: len(list)})
}

// ListNotifications handles GET /api/notifications requests.
func (h *AppointmentsHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	list, err := h.store.ListNotifications(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("failed to list notifications", "error", err, "user_id", principal.UserID)
		http.Error(w, "failed to list notifications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"notifications": list, "count": len(list)})
}

// HealthCheck handles GET /health.
func (h *AppointmentsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
