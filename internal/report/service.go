package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/signintech/gopdf"

	"telemed-ai/internal/appointment"
	"telemed-ai/internal/history"
	"telemed-ai/internal/profile"
)

type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

type ProfileSource interface {
	Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
}

type HistorySource interface {
	Latest(ctx context.Context, patientID uuid.UUID) (*history.Entry, error)
}

// Fonts with Latin and Devanagari coverage, tried in order.
var fontPaths = []string{
	"/usr/share/fonts/noto/NotoSansDevanagari-Regular.ttf",
	"/usr/share/fonts/truetype/noto/NotoSansDevanagari-Regular.ttf",
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// Service sends the on-call doctor a brief for each new appointment.
type Service struct {
	tgClient     TelegramClient
	doctorChatID int64
	profiles     ProfileSource
	history      HistorySource
}

func NewService(tg TelegramClient, doctorChatID int64, profiles ProfileSource, hist HistorySource) *Service {
	return &Service{
		tgClient:     tg,
		doctorChatID: doctorChatID,
		profiles:     profiles,
		history:      hist,
	}
}

// Brief is what the doctor sees about one booking.
type Brief struct {
	Appointment appointment.Appointment
	PatientName string
	History     *history.Entry
}

// AppointmentBooked implements appointment.Notifier.
func (s *Service) AppointmentBooked(ctx context.Context, a appointment.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	brief := s.collect(ctx, a)

	if err := s.tgClient.SendMessage(ctx, s.doctorChatID, Summary(brief)); err != nil {
		return err
	}

	pdf, err := RenderPDF(brief)
	if err != nil {
		// The text summary already went out; the PDF is a convenience.
		log.Printf("[NOTIFY] Skipping PDF brief for appointment %s: %v", a.ID, err)
		return nil
	}

	fileName := fmt.Sprintf("appointment_%s.pdf", a.ID.String())
	log.Printf("[NOTIFY] Sending PDF brief to Telegram chat %d...", s.doctorChatID)
	return s.tgClient.SendDocument(ctx, s.doctorChatID, pdf, fileName)
}

func (s *Service) collect(ctx context.Context, a appointment.Appointment) Brief {
	brief := Brief{Appointment: a, PatientName: a.PatientID.String()}

	if s.profiles != nil {
		if p, err := s.profiles.Get(ctx, a.PatientID); err == nil {
			brief.PatientName = p.FullName
		} else if !errors.Is(err, profile.ErrNotFound) {
			log.Printf("[NOTIFY] Could not load profile %s: %v", a.PatientID, err)
		}
	}
	if s.history != nil {
		if h, err := s.history.Latest(ctx, a.PatientID); err == nil {
			brief.History = h
		} else if !errors.Is(err, history.ErrNotFound) {
			log.Printf("[NOTIFY] Could not load medical history %s: %v", a.PatientID, err)
		}
	}
	return brief
}

// Summary is the plain-text Telegram message for a brief.
func Summary(b Brief) string {
	a := b.Appointment
	var buf bytes.Buffer
	if a.Status == appointment.StatusUrgent {
		buf.WriteString("URGENT appointment request\n")
	} else {
		buf.WriteString("New appointment request\n")
	}
	fmt.Fprintf(&buf, "Patient: %s\n", b.PatientName)
	fmt.Fprintf(&buf, "Date: %s\n", a.AppointmentDate.Format("02.01.2006 15:04 MST"))
	fmt.Fprintf(&buf, "Status: %s\n", statusLabel(a.Status))
	fmt.Fprintf(&buf, "Symptoms: %s", a.Symptoms)
	return buf.String()
}

// RenderPDF lays out the brief on one A4 page.
func RenderPDF(b Brief) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("Brief", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF: %w", fontErr)
	}

	a := b.Appointment
	lines := []struct {
		size float64
		text string
		gap  float64
	}{
		{20, "Appointment Brief", 30},
		{12, "Patient: " + b.PatientName, 15},
		{12, "Date: " + a.AppointmentDate.Format("02.01.2006 15:04 MST"), 15},
		{12, "Status: " + statusLabel(a.Status), 25},
		{14, "Symptoms:", 15},
	}
	for _, l := range lines {
		if err := pdf.SetFont("Brief", "", l.size); err != nil {
			return nil, err
		}
		if err := pdf.Cell(nil, l.text); err != nil {
			return nil, err
		}
		pdf.Br(l.gap)
	}

	if err := pdf.SetFont("Brief", "", 11); err != nil {
		return nil, err
	}
	if err := writeWrapped(&pdf, a.Symptoms); err != nil {
		return nil, err
	}
	pdf.Br(15)

	if err := pdf.SetFont("Brief", "", 14); err != nil {
		return nil, err
	}
	if err := pdf.Cell(nil, "Latest medical history:"); err != nil {
		return nil, err
	}
	pdf.Br(15)
	if err := pdf.SetFont("Brief", "", 11); err != nil {
		return nil, err
	}
	for _, line := range historyLines(b.History) {
		if err := writeWrapped(&pdf, line); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func writeWrapped(pdf *gopdf.GoPdf, text string) error {
	lines, err := pdf.SplitText(text, 500)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := pdf.Cell(nil, l); err != nil {
			return err
		}
		pdf.Br(12)
	}
	return nil
}

func historyLines(h *history.Entry) []string {
	if h == nil {
		return []string{"- No medical history on file."}
	}
	lines := []string{"- Condition: " + h.Condition}
	add := func(label string, v *string) {
		if v != nil && *v != "" {
			lines = append(lines, "- "+label+": "+*v)
		}
	}
	add("Medications", h.Medications)
	add("Allergies", h.Allergies)
	add("Blood group", h.BloodGroup)
	add("Notes", h.Notes)
	return lines
}

func statusLabel(s appointment.Status) string {
	switch s {
	case appointment.StatusPending:
		return "Pending"
	case appointment.StatusApproved:
		return "Approved"
	case appointment.StatusCompleted:
		return "Completed"
	case appointment.StatusCancelled:
		return "Cancelled"
	case appointment.StatusUrgent:
		return "Urgent"
	default:
		return string(s)
	}
}
