package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"telemed-ai/internal/appointment"
	"telemed-ai/internal/history"
	"telemed-ai/internal/profile"
)

type recordingTelegram struct {
	messages  []string
	documents []string
}

func (r *recordingTelegram) SendMessage(ctx context.Context, chatID int64, text string) error {
	r.messages = append(r.messages, text)
	return nil
}

func (r *recordingTelegram) SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error {
	r.documents = append(r.documents, fileName)
	return nil
}

type stubProfiles struct{ p *profile.Profile }

func (s stubProfiles) Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	if s.p == nil {
		return nil, profile.ErrNotFound
	}
	return s.p, nil
}

type stubHistory struct{ e *history.Entry }

func (s stubHistory) Latest(ctx context.Context, patientID uuid.UUID) (*history.Entry, error) {
	if s.e == nil {
		return nil, history.ErrNotFound
	}
	return s.e, nil
}

func sampleAppointment(status appointment.Status) appointment.Appointment {
	return appointment.Appointment{
		ID:              uuid.New(),
		PatientID:       uuid.New(),
		Symptoms:        "chest pain since morning",
		AppointmentDate: time.Date(2026, 11, 2, 10, 30, 0, 0, time.UTC),
		Status:          status,
	}
}

func TestSummary(t *testing.T) {
	got := Summary(Brief{Appointment: sampleAppointment(appointment.StatusUrgent), PatientName: "Asha"})

	want := "URGENT appointment request\n" +
		"Patient: Asha\n" +
		"Date: 02.11.2026 10:30 UTC\n" +
		"Status: Urgent\n" +
		"Symptoms: chest pain since morning"
	if got != want {
		t.Errorf("Unexpected summary:\n got %q\nwant %q", got, want)
	}

	if s := Summary(Brief{Appointment: sampleAppointment(appointment.StatusPending)}); !strings.HasPrefix(s, "New appointment request\n") {
		t.Errorf("Expected regular header, got %q", s)
	}
}

func TestHistoryLines(t *testing.T) {
	if got := historyLines(nil); len(got) != 1 || got[0] != "- No medical history on file." {
		t.Errorf("Unexpected lines for missing history: %v", got)
	}

	meds := "salbutamol"
	empty := ""
	got := historyLines(&history.Entry{Condition: "asthma", Medications: &meds, Notes: &empty})
	want := []string{"- Condition: asthma", "- Medications: salbutamol"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Got %v, want %v", got, want)
	}
}

func TestAppointmentBooked_SendsSummary(t *testing.T) {
	tg := &recordingTelegram{}
	svc := NewService(tg, 99,
		stubProfiles{p: &profile.Profile{FullName: "Asha Verma"}},
		stubHistory{})

	a := sampleAppointment(appointment.StatusPending)
	if err := svc.AppointmentBooked(context.Background(), a); err != nil {
		t.Fatalf("AppointmentBooked: %v", err)
	}
	if len(tg.messages) != 1 {
		t.Fatalf("Expected one message, got %d", len(tg.messages))
	}
	if !strings.Contains(tg.messages[0], "Patient: Asha Verma") {
		t.Errorf("Expected patient name in summary, got %q", tg.messages[0])
	}
	// The PDF depends on system fonts; when present it must be named after the appointment.
	for _, name := range tg.documents {
		if name != "appointment_"+a.ID.String()+".pdf" {
			t.Errorf("Unexpected document name %q", name)
		}
	}
}

func TestAppointmentBooked_UnknownProfileFallsBackToID(t *testing.T) {
	tg := &recordingTelegram{}
	svc := NewService(tg, 1, stubProfiles{}, nil)

	a := sampleAppointment(appointment.StatusPending)
	if err := svc.AppointmentBooked(context.Background(), a); err != nil {
		t.Fatalf("AppointmentBooked: %v", err)
	}
	if !strings.Contains(tg.messages[0], "Patient: "+a.PatientID.String()) {
		t.Errorf("Expected patient id in summary, got %q", tg.messages[0])
	}
}
