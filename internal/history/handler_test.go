package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"telemed-ai/internal/platform/web"
)

type memRepo struct {
	entries []Entry
}

func (m *memRepo) Add(ctx context.Context, e *Entry) error {
	if strings.TrimSpace(e.Condition) == "" {
		return ErrConditionMissing
	}
	e.ID = uuid.New()
	m.entries = append([]Entry{*e}, m.entries...)
	return nil
}

func (m *memRepo) List(ctx context.Context, patientID uuid.UUID) ([]Entry, error) {
	out := []Entry{}
	for _, e := range m.entries {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memRepo) Latest(ctx context.Context, patientID uuid.UUID) (*Entry, error) {
	list, _ := m.List(ctx, patientID)
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

func TestHandler(t *testing.T) {
	r := chi.NewRouter()
	r.Use(web.RequireUser)
	RegisterRoutes(r, NewHandler(&memRepo{}))
	patient := uuid.New()

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(web.UserHeader, patient.String())
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	if rr := send(http.MethodGet, "/medical-history/latest", ""); rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before any entry, got %d", rr.Code)
	}
	if rr := send(http.MethodPost, "/medical-history", `{"condition":""}`); rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing condition, got %d", rr.Code)
	}
	if rr := send(http.MethodPost, "/medical-history", `{"condition":"asthma"}`); rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rr.Code)
	}
	if rr := send(http.MethodPost, "/medical-history", `{"condition":"hypertension","medications":"amlodipine"}`); rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rr.Code)
	}

	rr := send(http.MethodGet, "/medical-history/latest", "")
	var latest map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &latest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if latest["condition"] != "hypertension" || latest["medications"] != "amlodipine" {
		t.Errorf("Unexpected latest entry %v", latest)
	}

	rr = send(http.MethodGet, "/medical-history", "")
	var all []Entry
	if err := json.Unmarshal(rr.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(all))
	}
}
