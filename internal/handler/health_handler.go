package handler

import (
	"context"
	"net/http"
	"time"

	"go-doc-library/pkg/apierror"
)

const healthCheckTimeout = 2 * time.Second

type HealthHandler struct {
	catalogCheck func(ctx context.Context) error
}

// NewHealthHandler reports healthy when catalogCheck succeeds. A nil check
// means the catalog lives in memory.
func NewHealthHandler(catalogCheck func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{catalogCheck: catalogCheck}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.catalogCheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.catalogCheck(ctx); err != nil {
			writeError(w, apierror.New(apierror.CodeStorageUnavailable, "catalog unavailable", err.Error(), http.StatusServiceUnavailable))
			return
		}
	}

	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, nil)
}
