package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrStore    = errors.New("product store unavailable or rejected the operation")
	ErrInvalid  = errors.New("invalid product input")
)

// ValidationError reports missing or malformed input. It is shown to the user and
// never changes any state.
type ValidationError struct {
	Fields  []string
	Message string
}

func NewValidationError(msg string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Message: msg}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// StoreError wraps a backing failure: unreachable, missing table, write rejected.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
