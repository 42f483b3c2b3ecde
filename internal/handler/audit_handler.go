package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-doc-library/internal/model"
	"go-doc-library/internal/service"
	"go-doc-library/pkg/apierror"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	auditQuery := model.AuditQuery{
		Action:  model.AuditAction(strings.TrimSpace(query.Get("action"))),
		ActorID: strings.TrimSpace(query.Get("actor_id")),
		Status:  model.AuditStatus(strings.TrimSpace(query.Get("status"))),
		Page:    parseIntOrDefault(query.Get("page"), 1),
		Limit:   parseIntOrDefault(query.Get("limit"), 0),
	}

	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		category, err := model.ParseCategory(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		auditQuery.Category = category
	}

	var err error
	if auditQuery.From, err = parseTimeQuery(query.Get("from"), "from"); err != nil {
		writeError(w, err)
		return
	}
	if auditQuery.To, err = parseTimeQuery(query.Get("to"), "to"); err != nil {
		writeError(w, err)
		return
	}

	items, meta, err := h.service.Query(r.Context(), auditQuery)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, items, &meta)
}

func parseTimeQuery(raw string, name string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}

	value, err := time.Parse(time.RFC3339Nano, trimmed)
	if err != nil {
		return time.Time{}, apierror.BadRequest("invalid '"+name+"' datetime format", trimmed)
	}
	return value.UTC(), nil
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
