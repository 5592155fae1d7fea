package consultation

import (
	"errors"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"telemed-ai/internal/platform/web"
)

// RelayCORSHeaders are the request headers browsers may send to the relay.
const RelayCORSHeaders = "authorization, x-client-info, apikey, content-type"

type Handler struct {
	svc  Service
	repo Repository
}

func NewHandler(svc Service, repo Repository) *Handler {
	return &Handler{svc: svc, repo: repo}
}

// Relay is the ai-consultation endpoint.
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	text, err := h.svc.Consult(r.Context(), req, callerKey(r))
	if err != nil {
		var relayErr *RelayError
		switch {
		case errors.Is(err, ErrEmptyQuery), errors.Is(err, ErrUnsupportedLang):
			web.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &relayErr):
			web.WriteJSON(w, relayErr.Status, Result{Error: relayErr.Message, Category: relayErr.Category})
		default:
			web.WriteJSON(w, http.StatusInternalServerError, Result{Error: err.Error(), Category: CategoryGeneric})
		}
		return
	}

	web.WriteJSON(w, http.StatusOK, Result{Response: text})
}

type saveRecordRequest struct {
	Query         string   `json:"query"`
	Response      string   `json:"response"`
	Language      Language `json:"language"`
	Type          Type     `json:"consultation_type"`
	AppointmentID *string  `json:"appointment_id"`
}

func (h *Handler) SaveRecord(w http.ResponseWriter, r *http.Request) {
	patientID, _ := web.UserID(r.Context())

	var req saveRecordRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" || strings.TrimSpace(req.Response) == "" {
		web.WriteError(w, http.StatusBadRequest, "query and response are required")
		return
	}
	if !req.Language.Valid() {
		web.WriteError(w, http.StatusBadRequest, ErrUnsupportedLang.Error())
		return
	}
	if req.Type == "" {
		req.Type = TypeAI
	}
	if req.Type != TypeAI && req.Type != TypeDoctor {
		web.WriteError(w, http.StatusBadRequest, "unknown consultation_type")
		return
	}

	rec := &Record{
		PatientID: patientID,
		Type:      req.Type,
		Query:     req.Query,
		Response:  req.Response,
		Language:  req.Language,
	}
	if req.AppointmentID != nil {
		id, err := uuid.Parse(*req.AppointmentID)
		if err != nil {
			web.WriteError(w, http.StatusBadRequest, "Invalid appointment_id")
			return
		}
		rec.AppointmentID = &id
	}

	if err := h.repo.Save(r.Context(), rec); err != nil {
		log.Printf("Failed to save consultation: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "Failed to save consultation")
		return
	}
	web.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	patientID, _ := web.UserID(r.Context())

	records, err := h.repo.ListByPatient(r.Context(), patientID)
	if err != nil {
		log.Printf("Failed to list consultations: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "Failed to list consultations")
		return
	}
	web.WriteJSON(w, http.StatusOK, records)
}

// RegisterRelay mounts the relay with its own CORS policy.
func RegisterRelay(r chi.Router, h *Handler) {
	r.Route("/functions/v1/ai-consultation", func(r chi.Router) {
		r.Use(web.CORS(RelayCORSHeaders))
		r.Post("/", h.Relay)
	})
}

// RegisterRoutes mounts the consultation record routes; callers must be authenticated.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/consultations", h.ListRecords)
	r.Post("/consultations", h.SaveRecord)
}

// callerKey identifies the caller for rate limiting. RealIP middleware has
// already rewritten RemoteAddr when a proxy header was present.
func callerKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
