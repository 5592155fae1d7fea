package profile

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"telemed-ai/internal/consultation"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

var ErrNotFound = errors.New("profile not found")

type Profile struct {
	ID                 uuid.UUID             `json:"id"`
	FullName           string                `json:"full_name"`
	Phone              *string               `json:"phone"`
	AvatarURL          *string               `json:"avatar_url"`
	LanguagePreference consultation.Language `json:"language_preference"`
	Roles              []Role                `json:"roles"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// Language is the profile's preferred language, English when unset.
func (p Profile) Language() consultation.Language {
	if p.LanguagePreference.Valid() {
		return p.LanguagePreference
	}
	return consultation.English
}

func (p Profile) Has(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
