package runtime

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError is a single field-level validation failure produced by
// generated Validate and ValidateInput routines.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateUUID parses a raw identifier and returns its canonical string
// form. Generated read paths call this at the boundary before querying.
func ValidateUUID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid UUID %q: %w", raw, err)
	}
	return id.String(), nil
}

// NewID mints a fresh identifier for generated fields.
func NewID() string { return uuid.NewString() }

// NonEmpty reports whether the slice has at least one element.
func NonEmpty[T any](xs []T) bool { return len(xs) > 0 }
