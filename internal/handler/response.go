package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-doc-library/internal/model"
	"go-doc-library/internal/storage"
	"go-doc-library/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

var validationCodes = map[model.ValidationKind]string{
	model.ValidationEmptyFile:        apierror.CodeEmptyFile,
	model.ValidationNoExtension:      apierror.CodeNoExtension,
	model.ValidationInvalidExtension: apierror.CodeInvalidExtension,
	model.ValidationTooLarge:         apierror.CodeFileTooLarge,
	model.ValidationContentMismatch:  apierror.CodeContentMismatch,
}

// toAPIError classifies err into the HTTP error envelope. Client errors keep
// their message; infrastructure failures are reported generically.
func toAPIError(err error) *apierror.APIError {
	var apiErr *apierror.APIError
	var validationErr *model.ValidationError
	var backendErr *model.BackendError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		return apierror.New(apierror.CodeContentMissing, "Stored content is missing", "", http.StatusNotFound)
	case errors.As(err, &backendErr):
		switch backendErr.Kind {
		case model.BackendConfigurationMissing:
			return apierror.New(apierror.CodeStorageMisconfigured, "Storage backend is not configured", "", http.StatusInternalServerError)
		case model.BackendRemoteFailure:
			return apierror.New(apierror.CodeStorageUnavailable, "Storage service failed", "", http.StatusBadGateway)
		default:
			return apierror.New(apierror.CodeStorageFailure, "Storage operation failed", "", http.StatusInternalServerError)
		}
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &validationErr):
		status := http.StatusBadRequest
		if validationErr.Kind == model.ValidationTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		return apierror.New(validationCodes[validationErr.Kind], validationErr.Error(), "", status)
	case errors.As(err, &maxBytesErr):
		return apierror.New(apierror.CodeFileTooLarge, "request body too large", "", http.StatusRequestEntityTooLarge)
	case errors.Is(err, model.ErrUnknownCategory):
		return apierror.New(apierror.CodeUnknownCategory, "Category not found", "", http.StatusNotFound)
	case errors.Is(err, model.ErrVersionNotFound):
		return apierror.New(apierror.CodeVersionNotFound, "Version not found", "", http.StatusNotFound)
	case errors.Is(err, model.ErrVersionDeleted):
		return apierror.New(apierror.CodeVersionDeleted, "Version is deleted and cannot be used", "", http.StatusConflict)
	case errors.Is(err, model.ErrNoActiveVersion):
		return apierror.New(apierror.CodeNoActiveVersion, "No active version", "", http.StatusNotFound)
	case errors.Is(err, model.ErrUnauthorized):
		return apierror.New(apierror.CodeUnauthorized, "Authentication required", "", http.StatusUnauthorized)
	case errors.Is(err, model.ErrForbidden):
		return apierror.New(apierror.CodeForbidden, "Access denied", "", http.StatusForbidden)
	default:
		return apierror.Internal("")
	}
}

func writeError(w http.ResponseWriter, err error) {
	apiErr := toAPIError(err)

	if apiErr.HTTPStatus >= http.StatusInternalServerError {
		// Log server side failures so the cause is visible in container logs.
		slog.Error("request failed", "code", apiErr.Code, "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
}
