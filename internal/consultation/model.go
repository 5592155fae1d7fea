package consultation

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
)

func (l Language) Valid() bool {
	return l == English || l == Hindi
}

// Category classifies a failed consultation. It is chosen from numeric
// status codes only.
type Category string

const (
	CategoryRateLimited Category = "rate_limited"
	CategoryUnavailable Category = "unavailable"
	CategoryTimeout     Category = "timeout"
	CategoryGeneric     Category = "generic"
)

type Type string

const (
	TypeAI     Type = "ai_consultation"
	TypeDoctor Type = "doctor_consultation"
)

// Request is one user turn sent to the relay.
type Request struct {
	Query          string          `json:"query"`
	Language       Language        `json:"language"`
	PatientHistory json.RawMessage `json:"patientHistory,omitempty"`
}

// Result is exactly one of Response or Error.
type Result struct {
	Response string   `json:"response,omitempty"`
	Error    string   `json:"error,omitempty"`
	Category Category `json:"category,omitempty"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a transcript turn or an upstream chat message.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ChatRequest is what the relay hands to an upstream provider.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Record is a persisted pairing of one query and one response.
type Record struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	PatientID     uuid.UUID  `json:"patient_id" db:"patient_id"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty" db:"appointment_id"`
	Type          Type       `json:"consultation_type" db:"consultation_type"`
	Query         string     `json:"query" db:"query"`
	Response      string     `json:"response" db:"response"`
	Language      Language   `json:"language" db:"language"`
	IsApproved    *bool      `json:"is_approved,omitempty" db:"is_approved"`
	ApprovedBy    *uuid.UUID `json:"approved_by,omitempty" db:"approved_by"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
