package appointment

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"telemed-ai/internal/platform/web"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	patientID, _ := web.UserID(r.Context())

	var req BookRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	a, err := h.svc.Book(r.Context(), patientID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) ListForPatient(w http.ResponseWriter, r *http.Request) {
	patientID, _ := web.UserID(r.Context())

	list, err := h.svc.ListForPatient(r.Context(), patientID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ListForDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, _ := web.UserID(r.Context())

	list, err := h.svc.ListForDoctor(r.Context(), doctorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.svc.Approve)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.svc.Complete)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.svc.Cancel)
}

type action func(ctx context.Context, id, userID uuid.UUID) (*Appointment, error)

func (h *Handler) act(w http.ResponseWriter, r *http.Request, fn action) {
	userID, _ := web.UserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "Invalid appointment ID")
		return
	}

	a, err := fn(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, a)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		web.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		web.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		web.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		web.WriteError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("Appointment request failed: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/appointments", h.ListForPatient)
	r.Post("/appointments", h.Book)
	r.Post("/appointments/{id}/cancel", h.Cancel)

	r.Get("/doctor/appointments", h.ListForDoctor)
	r.Post("/doctor/appointments/{id}/approve", h.Approve)
	r.Post("/doctor/appointments/{id}/complete", h.Complete)
}
