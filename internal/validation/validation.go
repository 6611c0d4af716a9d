package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRequired is wrapped by every rejection of blank input
var ErrRequired = errors.New("value is required")

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidateTaskText checks the text of a new task. Any text that is not blank
// after trimming is accepted as is.
func ValidateTaskText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ValidationError{Field: "text", Message: "task text is required", Err: ErrRequired}
	}
	return nil
}

// ValidateName checks a display name
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Field: "name", Message: "name is required", Err: ErrRequired}
	}
	return nil
}
