package service

import (
	"context"
	"log/slog"
	"net/http"

	"go-doc-library/internal/model"
	"go-doc-library/pkg/apierror"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, int, error)
}

// AuditService records who changed which version. Recording is best effort:
// a failed write is logged and never fails the audited operation.
type AuditService struct {
	store AuditStore
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

func (s *AuditService) Log(ctx context.Context, entry model.AuditEntry) {
	if s == nil || s.store == nil {
		return
	}

	if err := s.store.Log(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("audit entry not recorded",
			"action", entry.Action, "category", entry.Category, "version_id", entry.VersionID, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultAuditLimit
	}
	if query.Limit > maxAuditLimit {
		query.Limit = maxAuditLimit
	}

	if !query.From.IsZero() && !query.To.IsZero() && query.From.After(query.To) {
		return nil, model.Meta{}, apierror.New(apierror.CodeBadRequest, "'from' must not be after 'to'", "", http.StatusBadRequest)
	}

	items, total, err := s.store.Query(ctx, query)
	if err != nil {
		return nil, model.Meta{}, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + query.Limit - 1) / query.Limit
	}

	return items, model.Meta{Page: query.Page, Limit: query.Limit, Total: total, TotalPages: totalPages}, nil
}
