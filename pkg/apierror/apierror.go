package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes returned in the error envelope. Clients match on these, not on messages.
const (
	CodeBadRequest           = "BAD_REQUEST"
	CodeInvalidFilename      = "INVALID_FILENAME"
	CodeInvalidPath          = "INVALID_PATH"
	CodePathTraversal        = "PATH_TRAVERSAL"
	CodeEmptyFile            = "EMPTY_FILE"
	CodeNoExtension          = "NO_EXTENSION"
	CodeInvalidExtension     = "INVALID_EXTENSION"
	CodeFileTooLarge         = "FILE_TOO_LARGE"
	CodeContentMismatch      = "CONTENT_MISMATCH"
	CodeUnknownCategory      = "UNKNOWN_CATEGORY"
	CodeVersionNotFound      = "VERSION_NOT_FOUND"
	CodeVersionDeleted       = "VERSION_DELETED"
	CodeNoActiveVersion      = "NO_ACTIVE_VERSION"
	CodeContentMissing       = "CONTENT_MISSING"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeStorageMisconfigured = "STORAGE_MISCONFIGURED"
	CodeStorageFailure       = "STORAGE_FAILURE"
	CodeStorageUnavailable   = "STORAGE_UNAVAILABLE"
	CodeRequestTimeout       = "REQUEST_TIMEOUT"
	CodeInternal             = "INTERNAL_ERROR"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func BadRequest(message string, details string) *APIError {
	return New(CodeBadRequest, message, details, http.StatusBadRequest)
}

func Internal(details string) *APIError {
	return New(CodeInternal, "internal server error", details, http.StatusInternalServerError)
}

// As extracts an *APIError from err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
