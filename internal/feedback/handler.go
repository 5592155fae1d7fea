package feedback

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"telemed-ai/internal/platform/web"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type submitRequest struct {
	AppointmentID *uuid.UUID `json:"appointment_id"`
	Rating        *int       `json:"rating"`
	Comments      *string    `json:"comments"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	patientID, _ := web.UserID(r.Context())

	var req submitRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "Invalid feedback data")
		return
	}

	f := &Feedback{
		PatientID:     patientID,
		AppointmentID: req.AppointmentID,
		Rating:        req.Rating,
		Comments:      req.Comments,
	}
	if err := h.repo.Submit(r.Context(), f); err != nil {
		if errors.Is(err, ErrInvalidRating) {
			web.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Failed to save feedback: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "Failed to save feedback")
		return
	}
	web.WriteJSON(w, http.StatusCreated, f)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/feedback", h.Submit)
}
