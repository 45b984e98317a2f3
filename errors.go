package devtools

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField = errors.New("missing mandatory field")
	ErrNotRegular   = errors.New("target exists and is not a regular file")
)

// FieldError reports a mandatory manifest field left empty at construction.
type FieldError struct {
	Manifest string
	Field    string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Manifest, ErrMissingField, e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

// EncodeError is returned when a model cannot be rendered in its target
// format. It aborts only the generator that hit it.
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %s", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// GenerateError wraps the I/O failure of a generator task.
type GenerateError struct {
	Task string
	Path string
	Err  error
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("%s: write %s: %s", e.Task, e.Path, e.Err)
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}

func requireFields(manifest string, fields ...[2]string) error {
	var errs []error
	for _, f := range fields {
		if f[1] == "" {
			errs = append(errs, &FieldError{Manifest: manifest, Field: f[0]})
		}
	}
	return errors.Join(errs...)
}
