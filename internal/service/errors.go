package service

import (
	"errors"
	"fmt"
)

// Business-rule rejections surfaced to the HTTP layer. All of these are
// terminal, user-facing outcomes — nothing here is retried.
var (
	ErrDuplicateSubmission = errors.New("survey already submitted today")
	ErrInvalidQuantity     = errors.New("token quantity must be between 1 and 10")
	ErrTokenInvalidFormat  = errors.New("invalid token format")
	ErrTokenNotFound       = errors.New("token not found")
	ErrTokenExpired        = errors.New("token has expired")
	ErrTokenAlreadyUsed    = errors.New("token has already been used")
	ErrQuestionExists      = errors.New("question already exists")
	ErrNotFound            = errors.New("not found")
)

// ValidationError reports malformed or incomplete input. The message is
// safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
