package history

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Add(ctx context.Context, e *Entry) error
	List(ctx context.Context, patientID uuid.UUID) ([]Entry, error)
	Latest(ctx context.Context, patientID uuid.UUID) (*Entry, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

const selectColumns = `SELECT id, patient_id, condition, medications, allergies, blood_group, notes, created_at, updated_at FROM medical_history`

func (r *postgresRepo) Add(ctx context.Context, e *Entry) error {
	if strings.TrimSpace(e.Condition) == "" {
		return ErrConditionMissing
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	query := `
		INSERT INTO medical_history (id, patient_id, condition, medications, allergies, blood_group, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.PatientID, e.Condition, e.Medications, e.Allergies, e.BloodGroup, e.Notes, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *postgresRepo) List(ctx context.Context, patientID uuid.UUID) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *postgresRepo) Latest(ctx context.Context, patientID uuid.UUID) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE patient_id = $1 ORDER BY created_at DESC LIMIT 1`, patientID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var e Entry
	var medications, allergies, bloodGroup, notes sql.NullString
	if err := s.Scan(&e.ID, &e.PatientID, &e.Condition, &medications, &allergies, &bloodGroup, &notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Medications = stringPtr(medications)
	e.Allergies = stringPtr(allergies)
	e.BloodGroup = stringPtr(bloodGroup)
	e.Notes = stringPtr(notes)
	return &e, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
