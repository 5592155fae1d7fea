package consultation

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Save(ctx context.Context, rec *Record) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Record, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Save(ctx context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Type == "" {
		rec.Type = TypeAI
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO consultations (id, patient_id, appointment_id, consultation_type, query, response, language, is_approved, approved_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.PatientID, nullUUID(rec.AppointmentID), rec.Type, rec.Query, rec.Response, rec.Language,
		nullBool(rec.IsApproved), nullUUID(rec.ApprovedBy), rec.CreatedAt)
	return err
}

func (r *postgresRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Record, error) {
	query := `
		SELECT id, patient_id, appointment_id, consultation_type, query, response, language, is_approved, approved_by, created_at
		FROM consultations WHERE patient_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			rec         Record
			appointment uuid.NullUUID
			approvedBy  uuid.NullUUID
			approved    sql.NullBool
		)
		if err := rows.Scan(&rec.ID, &rec.PatientID, &appointment, &rec.Type, &rec.Query, &rec.Response,
			&rec.Language, &approved, &approvedBy, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if appointment.Valid {
			rec.AppointmentID = &appointment.UUID
		}
		if approvedBy.Valid {
			rec.ApprovedBy = &approvedBy.UUID
		}
		if approved.Valid {
			rec.IsApproved = &approved.Bool
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
