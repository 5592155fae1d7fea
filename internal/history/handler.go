package history

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"telemed-ai/internal/platform/web"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type addRequest struct {
	Condition   string  `json:"condition"`
	Medications *string `json:"medications"`
	Allergies   *string `json:"allergies"`
	BloodGroup  *string `json:"blood_group"`
	Notes       *string `json:"notes"`
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	patientID, _ := web.UserID(r.Context())

	var req addRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	e := &Entry{
		PatientID:   patientID,
		Condition:   req.Condition,
		Medications: req.Medications,
		Allergies:   req.Allergies,
		BloodGroup:  req.BloodGroup,
		Notes:       req.Notes,
	}
	if err := h.repo.Add(r.Context(), e); err != nil {
		if errors.Is(err, ErrConditionMissing) {
			web.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Failed to add medical history: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "Failed to add medical history")
		return
	}
	web.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	patientID, _ := web.UserID(r.Context())

	entries, err := h.repo.List(r.Context(), patientID)
	if err != nil {
		log.Printf("Failed to list medical history: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "Failed to list medical history")
		return
	}
	web.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	patientID, _ := web.UserID(r.Context())

	e, err := h.repo.Latest(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			web.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("Failed to load latest medical history: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "Failed to load medical history")
		return
	}
	web.WriteJSON(w, http.StatusOK, e)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/medical-history", h.List)
	r.Post("/medical-history", h.Add)
	r.Get("/medical-history/latest", h.Latest)
}
