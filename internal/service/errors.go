package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Handlers branch on these with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("permission denied")
	ErrAuthRequired = errors.New("authentication required")
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("storage failure")
)

// Error is a kinded service failure. Message is safe to show to the user.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func validationError(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func forbiddenError(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func authRequiredError() error {
	return &Error{Kind: ErrAuthRequired, Message: "You must be logged in to do that."}
}

func notFoundError(what string) error {
	return &Error{Kind: ErrNotFound, Message: what + " not found"}
}

func storageError(msg string, err error) error {
	return &Error{Kind: ErrStorage, Message: msg, Err: err}
}

// lookupError maps a repository lookup failure onto NotFound or Storage.
func lookupError(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError(what)
	}
	return storageError("failed to load "+what, err)
}

// Message returns the user-facing text of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
