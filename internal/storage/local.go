package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go-doc-library/internal/metrics"
	"go-doc-library/internal/model"
	"go-doc-library/internal/util"
)

// LocalBackend keeps objects on the local filesystem, one subdirectory per
// category below the root.
type LocalBackend struct {
	validator *PathValidator
}

func NewLocalBackend(root string) (*LocalBackend, error) {
	validator, err := NewPathValidator(root)
	if err != nil {
		return nil, backendError(model.BackendConfigurationMissing, KindLocal, "init", "", err)
	}

	if err := os.MkdirAll(validator.RootAbs(), 0o755); err != nil {
		return nil, backendError(model.BackendIOFailure, KindLocal, "init", "", fmt.Errorf("create storage root: %w", err))
	}

	return &LocalBackend{validator: validator}, nil
}

func (b *LocalBackend) Kind() Kind {
	return KindLocal
}

func (b *LocalBackend) RootAbs() string {
	return b.validator.RootAbs()
}

func (b *LocalBackend) Store(ctx context.Context, content io.Reader, originalName string, size int64, category model.Category) (StoredObject, error) {
	start := time.Now()
	key, fileName := NewStorageKey(category, originalName)

	written, err := b.store(ctx, content, key)
	metrics.RecordStorageOperation(string(KindLocal), "store", time.Since(start), err == nil)
	if err != nil {
		return StoredObject{}, err
	}
	metrics.RecordStoredBytes(string(KindLocal), written)

	if size >= 0 && written != size {
		b.discardPartial(ctx, category, key)
		return StoredObject{}, backendError(model.BackendIOFailure, KindLocal, "store", key,
			fmt.Errorf("wrote %d bytes, expected %d", written, size))
	}

	return StoredObject{
		OriginalName: fileName,
		StorageKey:   key,
		SizeBytes:    written,
		ContentType:  util.ContentTypeForName(fileName),
	}, nil
}

func (b *LocalBackend) discardPartial(ctx context.Context, category model.Category, key string) {
	if _, err := b.Delete(context.WithoutCancel(ctx), key); err != nil {
		metrics.RecordReconciliationGap(string(category), "store_size_mismatch")
		slog.Error("reconciliation gap: partial object left in storage",
			"backend", KindLocal, "category", category, "storage_key", key, "error", err)
	}
}

// store writes to a temp file in the target directory and links it into
// place, so readers never see partial content and existing keys are kept.
func (b *LocalBackend) store(ctx context.Context, content io.Reader, key string) (int64, error) {
	target, err := b.validator.ResolveKey(key)
	if err != nil {
		return 0, backendError(model.BackendIOFailure, KindLocal, "store", key, err)
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, backendError(model.BackendIOFailure, KindLocal, "store", key, fmt.Errorf("create category directory: %w", err))
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return 0, backendError(model.BackendIOFailure, KindLocal, "store", key, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	written, copyErr := io.Copy(tmp, contextReader{ctx: ctx, r: content})
	if copyErr == nil {
		copyErr = tmp.Sync()
	}
	if closeErr := tmp.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return 0, backendError(model.BackendIOFailure, KindLocal, "store", key, copyErr)
	}

	if err := os.Link(tmpPath, target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			err = ErrKeyExists
		}
		return 0, backendError(model.BackendIOFailure, KindLocal, "store", key, err)
	}

	return written, nil
}

func (b *LocalBackend) Locate(ctx context.Context, key string) (model.Locator, error) {
	path, err := b.validator.ResolveKey(key)
	if err != nil {
		return model.Locator{}, backendError(model.BackendIOFailure, KindLocal, "locate", key, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Locator{}, backendError(model.BackendIOFailure, KindLocal, "locate", key, ErrObjectNotFound)
		}
		return model.Locator{}, backendError(model.BackendIOFailure, KindLocal, "locate", key, err)
	}

	if info.IsDir() {
		return model.Locator{}, backendError(model.BackendIOFailure, KindLocal, "locate", key, ErrObjectNotFound)
	}

	return model.Locator{Kind: model.LocatorPath, Value: path}, nil
}

func (b *LocalBackend) Delete(ctx context.Context, key string) (bool, error) {
	start := time.Now()

	path, err := b.validator.ResolveKey(key)
	if err != nil {
		return false, backendError(model.BackendIOFailure, KindLocal, "delete", key, err)
	}

	err = os.Remove(path)
	metrics.RecordStorageOperation(string(KindLocal), "delete", time.Since(start), err == nil || errors.Is(err, fs.ErrNotExist))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, backendError(model.BackendIOFailure, KindLocal, "delete", key, err)
	}

	return true, nil
}

func (b *LocalBackend) Exists(ctx context.Context, key string) (bool, error) {
	path, err := b.validator.ResolveKey(key)
	if err != nil {
		return false, backendError(model.BackendIOFailure, KindLocal, "exists", key, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, backendError(model.BackendIOFailure, KindLocal, "exists", key, err)
	}

	return !info.IsDir(), nil
}
