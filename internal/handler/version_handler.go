package handler

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"go-doc-library/internal/middleware"
	"go-doc-library/internal/model"
	"go-doc-library/internal/service"
	"go-doc-library/internal/storage"
	"go-doc-library/internal/validation"
	"go-doc-library/pkg/apierror"
)

const multipartMemory = 8 * validation.MiB

type VersionHandler struct {
	service       *service.VersionService
	audit         *service.AuditService
	maxUploadSize int64
}

// NewVersionHandler caps request bodies at the largest category limit plus
// room for the multipart framing. audit may be nil.
func NewVersionHandler(service *service.VersionService, audit *service.AuditService) *VersionHandler {
	var largest int64
	for _, profile := range service.Profiles() {
		if profile.MaxSizeBytes > largest {
			largest = profile.MaxSizeBytes
		}
	}
	return &VersionHandler{service: service, audit: audit, maxUploadSize: largest + validation.MiB}
}

func (h *VersionHandler) record(r *http.Request, action model.AuditAction, category model.Category, versionID string, fileName string, err error) {
	entry := model.AuditEntry{
		Action:    action,
		Actor:     actorFromRequest(r),
		Status:    model.AuditSuccess,
		Category:  category,
		VersionID: versionID,
		FileName:  fileName,
	}
	if err != nil {
		apiErr := toAPIError(err)
		entry.Status = model.AuditFailure
		entry.Error = apiErr.Code + ": " + apiErr.Message
	}
	h.audit.Log(r.Context(), entry)
}

// namedFile carries the client supplied filename alongside the multipart body.
type namedFile struct {
	multipart.File
	name string
}

func (f namedFile) Name() string {
	return f.name
}

func (h *VersionHandler) Active(w http.ResponseWriter, r *http.Request) {
	category, err := model.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := h.service.GetActive(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, record, nil)
}

func (h *VersionHandler) ActiveContent(w http.ResponseWriter, r *http.Request) {
	category, err := model.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, err)
		return
	}

	record, locator, err := h.service.ActiveLocator(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}

	serveLocator(w, r, record, locator)
}

func (h *VersionHandler) VersionContent(w http.ResponseWriter, r *http.Request) {
	category, err := model.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, err)
		return
	}

	record, locator, err := h.service.VersionLocator(r.Context(), category, chi.URLParam(r, "version_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	serveLocator(w, r, record, locator)
}

func (h *VersionHandler) History(w http.ResponseWriter, r *http.Request) {
	category, err := model.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, err)
		return
	}

	includeDeleted, err := parseBoolQuery(r, "include_deleted")
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := h.service.ListHistory(r.Context(), category, includeDeleted)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, records, &model.Meta{Total: len(records), IncludeDeleted: includeDeleted})
}

func (h *VersionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	category, err := model.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, err)
			return
		}
		writeError(w, apierror.BadRequest("invalid multipart body", err.Error()))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apierror.BadRequest("form field 'file' is required", "file"))
		return
	}
	defer file.Close()

	uploaderID := ""
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		uploaderID = identity.UserID
	}

	record, err := h.service.Upload(r.Context(), category, namedFile{File: file, name: header.Filename}, uploaderID)
	h.record(r, model.AuditUpload, category, record.ID, header.Filename, err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, record, nil)
}

func (h *VersionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	category, err := model.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, err)
		return
	}

	versionID := chi.URLParam(r, "version_id")
	record, err := h.service.Restore(r.Context(), category, versionID)
	h.record(r, model.AuditActivate, category, versionID, record.FileName, err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, record, nil)
}

func (h *VersionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	category, err := model.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, err)
		return
	}

	versionID := chi.URLParam(r, "version_id")
	result, err := h.service.Delete(r.Context(), category, versionID)
	h.record(r, model.AuditDelete, category, versionID, result.Record.FileName, err)
	if err != nil {
		writeError(w, err)
		return
	}

	ack := model.DeleteAck{ID: result.Record.ID, Deleted: true, Purged: result.Purged}
	if result.Record.DeletedAt != nil {
		ack.DeletedAt = result.Record.DeletedAt.UTC().Format(time.RFC3339)
	}
	writeSuccess(w, http.StatusOK, ack, nil)
}

// serveLocator streams local files and redirects to presigned URLs.
func serveLocator(w http.ResponseWriter, r *http.Request, record model.VersionRecord, locator model.Locator) {
	if locator.Kind == model.LocatorURL {
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, locator.Value, http.StatusFound)
		return
	}

	file, err := os.Open(locator.Value)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("open %s: %w", record.StorageKey, storage.ErrObjectNotFound)
		}
		writeError(w, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		writeError(w, err)
		return
	}

	disposition := "inline"
	if download, _ := strconv.ParseBool(r.URL.Query().Get("download")); download {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", record.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": record.FileName}))
	http.ServeContent(w, r, record.FileName, info.ModTime(), file)
}

func parseBoolQuery(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apierror.BadRequest("query parameter '"+name+"' must be a boolean", name)
	}
	return value, nil
}
