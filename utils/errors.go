package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

type fieldRequiredError struct {
	path  string
	field string
}

func (e *fieldRequiredError) Error() string {
	return fmt.Sprintf("%s: %q is required", e.path, e.field)
}

// NewConfigValidationFieldRequiredError is used when a required config field is missing.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return &fieldRequiredError{path: path, field: field}
}

// GetFieldFromFieldRequiredError returns the name of the missing field if the error was produced
// by NewConfigValidationFieldRequiredError, or the empty string otherwise.
func GetFieldFromFieldRequiredError(err error) string {
	var fieldErr *fieldRequiredError
	if errors.As(err, &fieldErr) {
		return fieldErr.field
	}
	return ""
}

// NewConfigValidationError returns an error specifying a config validation error at the given path.
func NewConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}
