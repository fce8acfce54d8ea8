package codec

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrOutOfBounds     = errors.New("codec: field out of bounds")
	ErrOverflow        = errors.New("codec: value overflows field")
	ErrSchemaViolation = errors.New("codec: schema violation")
	ErrMissingField    = errors.New("codec: missing field value")
	ErrInvalidValue    = errors.New("codec: invalid field value")
	ErrChecksum        = errors.New("codec: checksum mismatch")
)

// FieldError reports a failure tied to a single field of a message.
type FieldError struct {
	Schema string // Schema name, empty when raised by a bare Field
	Field  string // Field name
	Err    error  // Underlying cause, wraps one of the package sentinels
}

func (e *FieldError) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: field %q: %v", e.Schema, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(field string, sentinel error, format string, args ...interface{}) *FieldError {
	return &FieldError{
		Field: field,
		Err:   fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...),
	}
}
