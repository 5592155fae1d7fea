package appointment

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"telemed-ai/internal/profile"
)

// Notifier is told about every new booking. It runs detached from the request.
type Notifier interface {
	AppointmentBooked(ctx context.Context, a Appointment) error
}

type RoleChecker interface {
	HasRole(ctx context.Context, userID uuid.UUID, role profile.Role) (bool, error)
}

type Service interface {
	Book(ctx context.Context, patientID uuid.UUID, req BookRequest) (*Appointment, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)
	Approve(ctx context.Context, id, doctorID uuid.UUID) (*Appointment, error)
	Complete(ctx context.Context, id, doctorID uuid.UUID) (*Appointment, error)
	Cancel(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error)
}

type service struct {
	repo     Repository
	roles    RoleChecker
	notifier Notifier
}

// NewService builds the appointment service. notifier may be nil.
func NewService(repo Repository, roles RoleChecker, notifier Notifier) Service {
	return &service{repo: repo, roles: roles, notifier: notifier}
}

func (s *service) Book(ctx context.Context, patientID uuid.UUID, req BookRequest) (*Appointment, error) {
	if strings.TrimSpace(req.Symptoms) == "" || req.AppointmentDate.IsZero() {
		return nil, ErrInvalidInput
	}

	a := &Appointment{
		PatientID:       patientID,
		Symptoms:        strings.TrimSpace(req.Symptoms),
		AppointmentDate: req.AppointmentDate.UTC(),
		Status:          StatusPending,
		Notes:           req.Notes,
	}
	if req.Urgent {
		a.Status = StatusUrgent
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	if s.notifier != nil {
		go func(a Appointment) {
			if err := s.notifier.AppointmentBooked(context.Background(), a); err != nil {
				log.Printf("[NOTIFY] Failed to notify doctor about appointment %s: %v", a.ID, err)
			}
		}(*a)
	}
	return a, nil
}

func (s *service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	if err := s.requireDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

func (s *service) Approve(ctx context.Context, id, doctorID uuid.UUID) (*Appointment, error) {
	if err := s.requireDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, StatusApproved, &doctorID)
}

func (s *service) Complete(ctx context.Context, id, doctorID uuid.UUID) (*Appointment, error) {
	if err := s.requireDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, StatusCompleted, nil)
}

func (s *service) Cancel(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.PatientID != patientID {
		return nil, ErrForbidden
	}
	return s.transition(ctx, id, StatusCancelled, nil)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, to Status, doctorID *uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, a.Status, to, doctorID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) requireDoctor(ctx context.Context, userID uuid.UUID) error {
	ok, err := s.roles.HasRole(ctx, userID, profile.RoleDoctor)
	if err != nil {
		return fmt.Errorf("role check failed: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
