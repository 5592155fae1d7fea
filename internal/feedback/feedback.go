package feedback

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type Feedback struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	Rating        *int       `json:"rating"`
	Comments      *string    `json:"comments"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (f Feedback) Validate() error {
	if f.Rating != nil && (*f.Rating < 1 || *f.Rating > 5) {
		return ErrInvalidRating
	}
	return nil
}

type Repository interface {
	Submit(ctx context.Context, f *Feedback) error
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Submit(ctx context.Context, f *Feedback) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = time.Now()

	var appointment uuid.NullUUID
	if f.AppointmentID != nil {
		appointment = uuid.NullUUID{UUID: *f.AppointmentID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (id, patient_id, appointment_id, rating, comments, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.PatientID, appointment, f.Rating, f.Comments, f.CreatedAt)
	return err
}
