package shared

import "errors"

// ValidationError marks errors caused by caller input rather than by the ledger itself.
// Handlers answer them with 400.
type ValidationError interface {
	error
	IsValidation() bool
}

// InvalidInputError is a plain validation failure carrying only a message
type InvalidInputError struct {
	Message string
}

func (e InvalidInputError) Error() string {
	return e.Message
}

func (e InvalidInputError) IsValidation() bool {
	return true
}

// Invalid builds a comparable validation error, suitable for package-level sentinels
func Invalid(message string) error {
	return InvalidInputError{Message: message}
}

// IsValidation reports whether any error in err's chain is a validation error
func IsValidation(err error) bool {
	var vErr ValidationError
	return errors.As(err, &vErr) && vErr.IsValidation()
}
