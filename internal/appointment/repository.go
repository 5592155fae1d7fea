package appointment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// UpdateStatus moves an appointment from one status to another. It fails
	// with ErrInvalidTransition if the stored status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, doctorID *uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)
	ListAll(ctx context.Context) ([]Appointment, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
		INSERT INTO appointments (id, patient_id, doctor_id, symptoms, appointment_date, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.PatientID, nullUUID(a.DoctorID), a.Symptoms, a.AppointmentDate, a.Status, a.Notes, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := `SELECT id, patient_id, doctor_id, symptoms, appointment_date, status, notes, created_at, updated_at FROM appointments WHERE id = $1`

	var a Appointment
	var doctor uuid.NullUUID
	var notes sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.PatientID, &doctor, &a.Symptoms, &a.AppointmentDate, &a.Status, &notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doctor.Valid {
		a.DoctorID = &doctor.UUID
	}
	if notes.Valid {
		a.Notes = &notes.String
	}
	return &a, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, doctorID *uuid.UUID) error {
	query := `
		UPDATE appointments
		SET status = $3, doctor_id = COALESCE($4, doctor_id), updated_at = $5
		WHERE id = $1 AND status = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, from, to, nullUUID(doctorID), time.Now())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *postgresRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.symptoms, a.appointment_date, a.status, a.notes, a.created_at, a.updated_at,
			d.full_name
		FROM appointments a
		LEFT JOIN profiles d ON d.id = a.doctor_id
		WHERE a.patient_id = $1
		ORDER BY a.appointment_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Appointment{}
	for rows.Next() {
		var a Appointment
		var doctor uuid.NullUUID
		var notes, doctorName sql.NullString
		if err := rows.Scan(&a.ID, &a.PatientID, &doctor, &a.Symptoms, &a.AppointmentDate, &a.Status, &notes,
			&a.CreatedAt, &a.UpdatedAt, &doctorName); err != nil {
			return nil, err
		}
		if doctor.Valid {
			a.DoctorID = &doctor.UUID
		}
		a.Notes = stringPtr(notes)
		a.DoctorName = stringPtr(doctorName)
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.symptoms, a.appointment_date, a.status, a.notes, a.created_at, a.updated_at,
			p.full_name, p.phone
		FROM appointments a
		LEFT JOIN profiles p ON p.id = a.patient_id
		ORDER BY a.appointment_date ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Appointment{}
	for rows.Next() {
		var a Appointment
		var doctor uuid.NullUUID
		var notes, patientName, patientPhone sql.NullString
		if err := rows.Scan(&a.ID, &a.PatientID, &doctor, &a.Symptoms, &a.AppointmentDate, &a.Status, &notes,
			&a.CreatedAt, &a.UpdatedAt, &patientName, &patientPhone); err != nil {
			return nil, err
		}
		if doctor.Valid {
			a.DoctorID = &doctor.UUID
		}
		a.Notes = stringPtr(notes)
		a.PatientName = stringPtr(patientName)
		a.PatientPhone = stringPtr(patientPhone)
		list = append(list, a)
	}
	return list, rows.Err()
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
