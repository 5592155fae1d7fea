package profile

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"telemed-ai/internal/consultation"
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	SetLanguage(ctx context.Context, id uuid.UUID, lang consultation.Language) error
	HasRole(ctx context.Context, userID uuid.UUID, role Role) (bool, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `SELECT id, full_name, phone, avatar_url, language_preference, created_at, updated_at FROM profiles WHERE id = $1`

	var p Profile
	var phone, avatar, lang sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.FullName, &phone, &avatar, &lang, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if phone.Valid {
		p.Phone = &phone.String
	}
	if avatar.Valid {
		p.AvatarURL = &avatar.String
	}
	p.LanguagePreference = consultation.Language(lang.String)

	rows, err := r.db.QueryContext(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	p.Roles = []Role{}
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		p.Roles = append(p.Roles, role)
	}
	return &p, rows.Err()
}

func (r *postgresRepo) SetLanguage(ctx context.Context, id uuid.UUID, lang consultation.Language) error {
	if !lang.Valid() {
		return consultation.ErrUnsupportedLang
	}
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET language_preference = $2, updated_at = $3 WHERE id = $1`, id, lang, time.Now())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepo) HasRole(ctx context.Context, userID uuid.UUID, role Role) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`, userID, role).Scan(&ok)
	return ok, err
}
