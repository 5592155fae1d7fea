package history

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("medical history not found")
	ErrConditionMissing = errors.New("condition is required")
)

// Entry is one medical_history row. The JSON shape is what the relay receives
// as patientHistory.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	PatientID   uuid.UUID `json:"patient_id"`
	Condition   string    `json:"condition"`
	Medications *string   `json:"medications"`
	Allergies   *string   `json:"allergies"`
	BloodGroup  *string   `json:"blood_group"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
