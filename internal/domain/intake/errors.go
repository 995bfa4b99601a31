package intake

import "errors"

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("patient record not found")

	// ErrInvalidInput wraps malformed ids, bodies and oversize fields.
	ErrInvalidInput = errors.New("invalid input")
)
