package appointment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusUrgent    Status = "urgent"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrInvalidInput      = errors.New("symptoms and appointment date are required")
	ErrInvalidTransition = errors.New("appointment status does not allow this change")
	ErrForbidden         = errors.New("not allowed to change this appointment")
)

// transitions lists the statuses each status may move to.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusCancelled},
	StatusUrgent:   {StatusApproved, StatusCancelled},
	StatusApproved: {StatusCompleted, StatusCancelled},
}

func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// AwaitingReview reports whether a doctor still has to act on the appointment.
func (s Status) AwaitingReview() bool {
	return s == StatusPending || s == StatusUrgent
}

type Appointment struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	DoctorID        *uuid.UUID `json:"doctor_id"`
	Symptoms        string     `json:"symptoms"`
	AppointmentDate time.Time  `json:"appointment_date"`
	Status          Status     `json:"status"`
	Notes           *string    `json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Joined from profiles when listing.
	DoctorName   *string `json:"doctor_name,omitempty"`
	PatientName  *string `json:"patient_name,omitempty"`
	PatientPhone *string `json:"patient_phone,omitempty"`
}

type BookRequest struct {
	Symptoms        string    `json:"symptoms"`
	AppointmentDate time.Time `json:"appointment_date"`
	Urgent          bool      `json:"urgent"`
	Notes           *string   `json:"notes"`
}
