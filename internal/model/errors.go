package model

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors
	ErrVersionNotFound = errors.New("version not found")
	ErrUnknownCategory = errors.New("unknown category")

	// Lifecycle state errors
	ErrVersionDeleted  = errors.New("version is deleted")
	ErrNoActiveVersion = errors.New("no active version")

	// Catalog integrity errors
	ErrDuplicateStorageKey = errors.New("storage key already recorded")
	ErrDuplicateVersionID  = errors.New("version id already recorded")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type ValidationKind string

const (
	ValidationEmptyFile        ValidationKind = "EMPTY_FILE"
	ValidationNoExtension      ValidationKind = "NO_EXTENSION"
	ValidationInvalidExtension ValidationKind = "INVALID_EXTENSION"
	ValidationTooLarge         ValidationKind = "TOO_LARGE"
	ValidationContentMismatch  ValidationKind = "CONTENT_MISMATCH"
)

// ValidationError is always caused by the client and is never retried.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any ValidationError of the same kind, so errors.Is(err, ErrTooLarge)
// works regardless of the message.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

var (
	ErrEmptyFile        = &ValidationError{Kind: ValidationEmptyFile}
	ErrNoExtension      = &ValidationError{Kind: ValidationNoExtension}
	ErrInvalidExtension = &ValidationError{Kind: ValidationInvalidExtension}
	ErrTooLarge         = &ValidationError{Kind: ValidationTooLarge}
	ErrContentMismatch  = &ValidationError{Kind: ValidationContentMismatch}
)

func NewValidationError(kind ValidationKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

type BackendKind string

const (
	BackendConfigurationMissing BackendKind = "CONFIGURATION_MISSING"
	BackendIOFailure            BackendKind = "IO_FAILURE"
	BackendRemoteFailure        BackendKind = "REMOTE_SERVICE_FAILURE"
)

// BackendError is an infrastructure failure from a storage backend, annotated
// with the attempted operation and storage key.
type BackendError struct {
	Kind    BackendKind
	Backend string
	Op      string
	Key     string
	Err     error
}

func (e *BackendError) Error() string {
	msg := fmt.Sprintf("%s storage %s", e.Backend, e.Op)
	if e.Key != "" {
		msg += fmt.Sprintf(" %q", e.Key)
	}
	msg += ": " + string(e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	t, ok := target.(*BackendError)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

var (
	ErrConfigurationMissing = &BackendError{Kind: BackendConfigurationMissing}
	ErrIOFailure            = &BackendError{Kind: BackendIOFailure}
	ErrRemoteFailure        = &BackendError{Kind: BackendRemoteFailure}
)

func IsClientError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr) ||
		errors.Is(err, ErrVersionNotFound) ||
		errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrVersionDeleted) ||
		errors.Is(err, ErrNoActiveVersion)
}
