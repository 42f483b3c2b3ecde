package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go-doc-library/internal/metrics"
	"go-doc-library/internal/model"
	"go-doc-library/internal/storage"
	"go-doc-library/internal/validation"
)

// VersionCatalog persists version records. Implementations keep at most one
// active, non-deleted record per category.
type VersionCatalog interface {
	// CreateActive inserts record as the active version, deactivating the
	// previous one atomically.
	CreateActive(ctx context.Context, record model.VersionRecord) (model.VersionRecord, error)
	ListAll(ctx context.Context, category model.Category, includeDeleted bool) ([]model.VersionRecord, error)
	GetByID(ctx context.Context, category model.Category, id string) (model.VersionRecord, error)
	GetActive(ctx context.Context, category model.Category) (model.VersionRecord, error)
	SetActiveExclusive(ctx context.Context, category model.Category, id string) (model.VersionRecord, error)
	SoftDelete(ctx context.Context, category model.Category, id string) (model.VersionRecord, error)
}

type BackendSelector interface {
	Select(ctx context.Context) (storage.Backend, error)
}

type DeleteResult struct {
	Record model.VersionRecord
	Purged bool
}

// VersionService is the only writer of the active flag.
type VersionService struct {
	catalog       VersionCatalog
	backends      BackendSelector
	profiles      validation.Profiles
	purgeOnDelete bool
}

func NewVersionService(catalog VersionCatalog, backends BackendSelector, profiles validation.Profiles) *VersionService {
	if profiles == nil {
		profiles = validation.DefaultProfiles()
	}
	return &VersionService{catalog: catalog, backends: backends, profiles: profiles}
}

// SetPurgeOnDelete makes Delete also remove stored bytes after the record is
// soft deleted. Off by default so deleted versions stay recoverable by an operator.
func (s *VersionService) SetPurgeOnDelete(enabled bool) {
	s.purgeOnDelete = enabled
}

func (s *VersionService) Profiles() validation.Profiles {
	return s.profiles
}

// Upload validates file, stores its bytes and records it as the category's
// active version. Bytes are stored before the catalog write; when the catalog
// write fails the bytes are removed again.
func (s *VersionService) Upload(ctx context.Context, category model.Category, file validation.File, uploaderID string) (model.VersionRecord, error) {
	profile, err := s.profiles.For(category)
	if err != nil {
		return model.VersionRecord{}, err
	}

	size, err := validation.Validate(file, profile)
	if err != nil {
		metrics.RecordUpload(string(category), "rejected")
		return model.VersionRecord{}, err
	}

	backend, err := s.backends.Select(ctx)
	if err != nil {
		metrics.RecordUpload(string(category), "error")
		return model.VersionRecord{}, err
	}

	stored, err := backend.Store(ctx, file, file.Name(), size, category)
	if err != nil {
		metrics.RecordUpload(string(category), "error")
		slog.Error("store upload failed", "category", category, "file_name", file.Name(), "error", err)
		return model.VersionRecord{}, err
	}

	record, err := s.catalog.CreateActive(ctx, model.VersionRecord{
		Category:   category,
		FileName:   stored.OriginalName,
		StorageKey: stored.StorageKey,
		SizeBytes:  stored.SizeBytes,
		MimeType:   stored.ContentType,
		UploadedBy: uploaderID,
	})
	if err != nil {
		metrics.RecordUpload(string(category), "error")
		s.discardStored(ctx, backend, category, stored.StorageKey, "catalog_write_failed")
		return model.VersionRecord{}, fmt.Errorf("record uploaded version: %w", err)
	}

	metrics.RecordUpload(string(category), "success")
	metrics.RecordActivation(string(category))
	slog.Info("version uploaded",
		"category", category,
		"version_id", record.ID,
		"storage_key", record.StorageKey,
		"size_bytes", record.SizeBytes,
		"uploaded_by", uploaderID,
	)

	return record, nil
}

// discardStored removes bytes that no catalog record points at. Failure
// leaves an orphan object, which is logged for reconciliation.
func (s *VersionService) discardStored(ctx context.Context, backend storage.Backend, category model.Category, key string, reason string) {
	if _, err := backend.Delete(context.WithoutCancel(ctx), key); err != nil {
		metrics.RecordReconciliationGap(string(category), reason)
		slog.Error("reconciliation gap: stored object left without catalog record",
			"category", category, "storage_key", key, "reason", reason, "error", err)
	}
}

// Restore makes an existing, non-deleted version the active one.
func (s *VersionService) Restore(ctx context.Context, category model.Category, id string) (model.VersionRecord, error) {
	if _, err := s.profiles.For(category); err != nil {
		return model.VersionRecord{}, err
	}

	target, err := s.catalog.GetByID(ctx, category, id)
	if err != nil {
		return model.VersionRecord{}, err
	}
	if target.IsDeleted() {
		return model.VersionRecord{}, model.ErrVersionDeleted
	}

	activated, err := s.catalog.SetActiveExclusive(ctx, category, id)
	if err != nil {
		return model.VersionRecord{}, err
	}

	metrics.RecordActivation(string(category))
	slog.Info("version activated", "category", category, "version_id", id)
	return activated, nil
}

// Delete soft deletes a version. Deleting the active version leaves the
// category without an active version; no other version is promoted.
func (s *VersionService) Delete(ctx context.Context, category model.Category, id string) (DeleteResult, error) {
	if _, err := s.profiles.For(category); err != nil {
		return DeleteResult{}, err
	}

	deleted, err := s.catalog.SoftDelete(ctx, category, id)
	if err != nil {
		return DeleteResult{}, err
	}

	metrics.RecordDeletion(string(category))
	slog.Info("version deleted", "category", category, "version_id", id, "storage_key", deleted.StorageKey)

	result := DeleteResult{Record: deleted}
	if !s.purgeOnDelete {
		return result, nil
	}

	backend, err := s.backends.Select(ctx)
	if err != nil {
		metrics.RecordReconciliationGap(string(category), "purge_backend_unavailable")
		slog.Error("reconciliation gap: cannot purge deleted version", "category", category, "storage_key", deleted.StorageKey, "error", err)
		return result, nil
	}

	removed, err := backend.Delete(context.WithoutCancel(ctx), deleted.StorageKey)
	if err != nil {
		metrics.RecordReconciliationGap(string(category), "purge_failed")
		slog.Error("reconciliation gap: cannot purge deleted version", "category", category, "storage_key", deleted.StorageKey, "error", err)
		return result, nil
	}

	result.Purged = removed
	return result, nil
}

func (s *VersionService) GetActive(ctx context.Context, category model.Category) (model.VersionRecord, error) {
	if _, err := s.profiles.For(category); err != nil {
		return model.VersionRecord{}, err
	}
	return s.catalog.GetActive(ctx, category)
}

// ActiveLocator returns the active version and a fresh locator for its bytes.
func (s *VersionService) ActiveLocator(ctx context.Context, category model.Category) (model.VersionRecord, model.Locator, error) {
	record, err := s.GetActive(ctx, category)
	if err != nil {
		return model.VersionRecord{}, model.Locator{}, err
	}

	locator, err := s.locate(ctx, record)
	if err != nil {
		return model.VersionRecord{}, model.Locator{}, err
	}
	return record, locator, nil
}

// VersionLocator returns a locator for any non-deleted version.
func (s *VersionService) VersionLocator(ctx context.Context, category model.Category, id string) (model.VersionRecord, model.Locator, error) {
	if _, err := s.profiles.For(category); err != nil {
		return model.VersionRecord{}, model.Locator{}, err
	}

	record, err := s.catalog.GetByID(ctx, category, id)
	if err != nil {
		return model.VersionRecord{}, model.Locator{}, err
	}
	if record.IsDeleted() {
		return model.VersionRecord{}, model.Locator{}, model.ErrVersionDeleted
	}

	locator, err := s.locate(ctx, record)
	if err != nil {
		return model.VersionRecord{}, model.Locator{}, err
	}
	return record, locator, nil
}

func (s *VersionService) locate(ctx context.Context, record model.VersionRecord) (model.Locator, error) {
	backend, err := s.backends.Select(ctx)
	if err != nil {
		return model.Locator{}, err
	}

	locator, err := backend.Locate(ctx, record.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			slog.Warn("catalog record points at missing object",
				"category", record.Category, "version_id", record.ID, "storage_key", record.StorageKey)
		}
		return model.Locator{}, err
	}
	return locator, nil
}

func (s *VersionService) ListHistory(ctx context.Context, category model.Category, includeDeleted bool) ([]model.VersionRecord, error) {
	if _, err := s.profiles.For(category); err != nil {
		return nil, err
	}
	return s.catalog.ListAll(ctx, category, includeDeleted)
}

func (s *VersionService) StorageInfo(ctx context.Context) (model.StorageInfo, error) {
	backend, err := s.backends.Select(ctx)
	if err != nil {
		return model.StorageInfo{}, err
	}

	return model.StorageInfo{
		Backend:       string(backend.Kind()),
		PurgeOnDelete: s.purgeOnDelete,
		Categories:    s.profiles.Limits(),
	}, nil
}
