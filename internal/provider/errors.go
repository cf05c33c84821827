package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates the caller supplied invalid input. It is always
	// raised before any adapter call is made.
	ErrValidation = errors.New("validation failed")

	// ErrAdapter indicates a downstream provider or transport failure. The
	// caller may retry; no retry is performed internally.
	ErrAdapter = errors.New("adapter failure")
)

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Adapterf wraps ErrAdapter with a formatted message. Provider error text is
// embedded verbatim for diagnosability.
func Adapterf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAdapter, fmt.Sprintf(format, args...))
}
