package tasks

import (
	"strings"
	"unicode/utf8"

	"task-tracker/internal/models"
)

// MaxDescriptionLen is counted in characters, not bytes.
const MaxDescriptionLen = 120

// normalizeFields trims every field and rejects blanks.
func normalizeFields(f models.Fields) (models.Fields, error) {
	out := models.Fields{
		UserAssigned: strings.TrimSpace(f.UserAssigned),
		Country:      strings.TrimSpace(f.Country),
		Description:  strings.TrimSpace(f.Description),
	}
	if out.UserAssigned == "" || out.Country == "" || out.Description == "" {
		return models.Fields{}, ErrMissingFields
	}
	return out, nil
}

// ValidateNew checks fields for a task about to be created.
func ValidateNew(f models.Fields) (models.Fields, error) {
	out, err := normalizeFields(f)
	if err != nil {
		return models.Fields{}, err
	}
	if utf8.RuneCountInString(out.Description) > MaxDescriptionLen {
		return models.Fields{}, ErrDescriptionTooLong
	}
	return out, nil
}

// ValidateEdit checks fields for an existing task. Length is only enforced
// at creation.
func ValidateEdit(f models.Fields) (models.Fields, error) {
	return normalizeFields(f)
}
