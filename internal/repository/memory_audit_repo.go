package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-doc-library/internal/model"
)

// MemoryAuditRepository keeps audit entries in process, newest last.
type MemoryAuditRepository struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

func (r *MemoryAuditRepository) Log(_ context.Context, entry model.AuditEntry) error {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return nil
}

func (r *MemoryAuditRepository) Query(_ context.Context, query model.AuditQuery) ([]model.AuditEntry, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]model.AuditEntry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if query.Category != "" && e.Category != query.Category {
			continue
		}
		if query.Action != "" && !strings.EqualFold(string(e.Action), string(query.Action)) {
			continue
		}
		if actorID := strings.TrimSpace(query.ActorID); actorID != "" && e.Actor.UserID != actorID {
			continue
		}
		if query.Status != "" && !strings.EqualFold(string(e.Status), string(query.Status)) {
			continue
		}
		if !query.From.IsZero() && e.OccurredAt.Before(query.From) {
			continue
		}
		if !query.To.IsZero() && e.OccurredAt.After(query.To) {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)
	start := (query.Page - 1) * query.Limit
	if start > total {
		start = total
	}
	end := start + query.Limit
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}
