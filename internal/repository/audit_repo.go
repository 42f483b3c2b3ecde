package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-doc-library/internal/model"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_entries
		 (action, occurred_at, actor_user_id, actor_username, actor_role, actor_ip,
		  status, category, version_id, file_name, error_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		string(entry.Action), entry.OccurredAt,
		entry.Actor.UserID, entry.Actor.Username, entry.Actor.Role, entry.Actor.IP,
		string(entry.Status), string(entry.Category), entry.VersionID, entry.FileName, entry.Error)
	if err != nil {
		return fmt.Errorf("log audit entry: %w", err)
	}
	return nil
}

// Query returns one page of entries, newest first. The caller normalizes
// Page and Limit.
func (r *AuditRepository) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, int, error) {
	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if query.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, string(query.Category))
		argIdx++
	}
	if query.Action != "" {
		where = append(where, fmt.Sprintf("lower(action) = lower($%d)", argIdx))
		args = append(args, string(query.Action))
		argIdx++
	}
	if actorID := strings.TrimSpace(query.ActorID); actorID != "" {
		where = append(where, fmt.Sprintf("actor_user_id = $%d", argIdx))
		args = append(args, actorID)
		argIdx++
	}
	if query.Status != "" {
		where = append(where, fmt.Sprintf("lower(status) = lower($%d)", argIdx))
		args = append(args, string(query.Status))
		argIdx++
	}
	if !query.From.IsZero() {
		where = append(where, fmt.Sprintf("occurred_at >= $%d", argIdx))
		args = append(args, query.From)
		argIdx++
	}
	if !query.To.IsZero() {
		where = append(where, fmt.Sprintf("occurred_at <= $%d", argIdx))
		args = append(args, query.To)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_entries "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	dataQuery := fmt.Sprintf(
		`SELECT action, occurred_at, actor_user_id, actor_username, actor_role, actor_ip,
		        status, category, version_id, file_name, error_text
		 FROM audit_entries %s
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`, whereClause, argIdx, argIdx+1)
	args = append(args, query.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		var action, status, category string

		if err := rows.Scan(
			&action, &e.OccurredAt,
			&e.Actor.UserID, &e.Actor.Username, &e.Actor.Role, &e.Actor.IP,
			&status, &category, &e.VersionID, &e.FileName, &e.Error,
		); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}

		e.Action = model.AuditAction(action)
		e.Status = model.AuditStatus(status)
		e.Category = model.Category(category)
		e.OccurredAt = e.OccurredAt.UTC()
		entries = append(entries, e)
	}

	return entries, total, rows.Err()
}
