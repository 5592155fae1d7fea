package profile

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"telemed-ai/internal/consultation"
	"telemed-ai/internal/platform/web"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := web.UserID(r.Context())

	p, err := h.repo.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			web.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("Failed to load profile: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	web.WriteJSON(w, http.StatusOK, p)
}

type languageRequest struct {
	Language consultation.Language `json:"language"`
}

// SetLanguage is the English/Hindi toggle.
func (h *Handler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	userID, _ := web.UserID(r.Context())

	var req languageRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.repo.SetLanguage(r.Context(), userID, req.Language)
	switch {
	case errors.Is(err, consultation.ErrUnsupportedLang):
		web.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		web.WriteError(w, http.StatusNotFound, err.Error())
	case err != nil:
		log.Printf("Failed to update language: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "Failed to update language")
	default:
		web.WriteJSON(w, http.StatusOK, map[string]string{"language_preference": string(req.Language)})
	}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/profile", h.Get)
	r.Put("/profile/language", h.SetLanguage)
}
