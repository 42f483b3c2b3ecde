package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-doc-library/internal/model"
)

const (
	uniqueViolation = "23505"

	storageKeyConstraint = "document_versions_storage_key_key"
	primaryKeyConstraint = "document_versions_pkey"
)

const versionColumns = `id::text, category, file_name, storage_key, size_bytes, mime_type,
	is_active, uploaded_by, created_at, deleted_at`

// VersionRepository is the Postgres version catalog. Every activation change
// runs in one transaction holding a per-category advisory lock, so readers
// never observe two active versions in a category.
type VersionRepository struct {
	pool *pgxpool.Pool
}

func NewVersionRepository(pool *pgxpool.Pool) *VersionRepository {
	return &VersionRepository{pool: pool}
}

func scanVersion(row pgx.Row) (model.VersionRecord, error) {
	var rec model.VersionRecord
	var category string
	var deletedAt *time.Time

	err := row.Scan(&rec.ID, &category, &rec.FileName, &rec.StorageKey, &rec.SizeBytes,
		&rec.MimeType, &rec.IsActive, &rec.UploadedBy, &rec.CreatedAt, &deletedAt)
	if err != nil {
		return model.VersionRecord{}, err
	}

	rec.Category = model.Category(category)
	rec.CreatedAt = rec.CreatedAt.UTC()
	if deletedAt != nil {
		utc := deletedAt.UTC()
		rec.DeletedAt = &utc
	}
	return rec, nil
}

// inCategoryTx runs fn in a transaction serialized against every other
// activation change in the same category.
func (r *VersionRepository) inCategoryTx(ctx context.Context, category model.Category, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "document_versions:"+string(category)); err != nil {
			return fmt.Errorf("lock category %s: %w", category, err)
		}
		return fn(tx)
	})
}

func (r *VersionRepository) CreateActive(ctx context.Context, record model.VersionRecord) (model.VersionRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	var created model.VersionRecord
	err := r.inCategoryTx(ctx, record.Category, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE document_versions SET is_active = FALSE
			 WHERE category = $1 AND is_active`, string(record.Category)); err != nil {
			return fmt.Errorf("deactivate previous version: %w", err)
		}

		row := tx.QueryRow(ctx,
			`INSERT INTO document_versions
			 (id, category, file_name, storage_key, size_bytes, mime_type, is_active, uploaded_by, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, clock_timestamp())
			 RETURNING `+versionColumns,
			record.ID, string(record.Category), record.FileName, record.StorageKey,
			record.SizeBytes, record.MimeType, record.UploadedBy)

		var err error
		created, err = scanVersion(row)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case storageKeyConstraint:
				return model.VersionRecord{}, model.ErrDuplicateStorageKey
			case primaryKeyConstraint:
				return model.VersionRecord{}, model.ErrDuplicateVersionID
			}
		}
		return model.VersionRecord{}, fmt.Errorf("create active version: %w", err)
	}

	return created, nil
}

func (r *VersionRepository) ListAll(ctx context.Context, category model.Category, includeDeleted bool) ([]model.VersionRecord, error) {
	query := `SELECT ` + versionColumns + ` FROM document_versions WHERE category = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, string(category))
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	records := make([]model.VersionRecord, 0)
	for rows.Next() {
		rec, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return records, nil
}

func (r *VersionRepository) GetByID(ctx context.Context, category model.Category, id string) (model.VersionRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.VersionRecord{}, model.ErrVersionNotFound
	}

	rec, err := scanVersion(r.pool.QueryRow(ctx,
		`SELECT `+versionColumns+` FROM document_versions WHERE id = $1 AND category = $2`,
		id, string(category)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.VersionRecord{}, model.ErrVersionNotFound
	}
	if err != nil {
		return model.VersionRecord{}, fmt.Errorf("get version: %w", err)
	}
	return rec, nil
}

func (r *VersionRepository) GetActive(ctx context.Context, category model.Category) (model.VersionRecord, error) {
	rec, err := scanVersion(r.pool.QueryRow(ctx,
		`SELECT `+versionColumns+` FROM document_versions
		 WHERE category = $1 AND is_active AND deleted_at IS NULL`,
		string(category)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.VersionRecord{}, model.ErrNoActiveVersion
	}
	if err != nil {
		return model.VersionRecord{}, fmt.Errorf("get active version: %w", err)
	}
	return rec, nil
}

func (r *VersionRepository) SetActiveExclusive(ctx context.Context, category model.Category, id string) (model.VersionRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.VersionRecord{}, model.ErrVersionNotFound
	}

	var activated model.VersionRecord
	err := r.inCategoryTx(ctx, category, func(tx pgx.Tx) error {
		target, err := scanVersion(tx.QueryRow(ctx,
			`SELECT `+versionColumns+` FROM document_versions
			 WHERE id = $1 AND category = $2 FOR UPDATE`, id, string(category)))
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrVersionNotFound
		}
		if err != nil {
			return fmt.Errorf("lock target version: %w", err)
		}

		if target.IsDeleted() {
			return model.ErrVersionDeleted
		}

		if target.IsActive {
			activated = target
			return nil
		}

		if _, err := tx.Exec(ctx,
			`UPDATE document_versions SET is_active = FALSE
			 WHERE category = $1 AND is_active AND id <> $2`, string(category), id); err != nil {
			return fmt.Errorf("deactivate current version: %w", err)
		}

		activated, err = scanVersion(tx.QueryRow(ctx,
			`UPDATE document_versions SET is_active = TRUE
			 WHERE id = $1 RETURNING `+versionColumns, id))
		if err != nil {
			return fmt.Errorf("activate version: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.VersionRecord{}, err
	}

	return activated, nil
}

// SoftDelete is idempotent: a second delete keeps the original deleted_at.
func (r *VersionRepository) SoftDelete(ctx context.Context, category model.Category, id string) (model.VersionRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.VersionRecord{}, model.ErrVersionNotFound
	}

	rec, err := scanVersion(r.pool.QueryRow(ctx,
		`UPDATE document_versions
		 SET deleted_at = COALESCE(deleted_at, NOW()), is_active = FALSE
		 WHERE id = $1 AND category = $2
		 RETURNING `+versionColumns, id, string(category)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.VersionRecord{}, model.ErrVersionNotFound
	}
	if err != nil {
		return model.VersionRecord{}, fmt.Errorf("soft delete version: %w", err)
	}
	return rec, nil
}
