package handler

import (
	"net/http"

	"go-doc-library/internal/service"
)

type StorageHandler struct {
	service *service.VersionService
}

func NewStorageHandler(service *service.VersionService) *StorageHandler {
	return &StorageHandler{service: service}
}

// Info reports the selected backend and the upload limits per category.
func (h *StorageHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.StorageInfo(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, info, nil)
}
