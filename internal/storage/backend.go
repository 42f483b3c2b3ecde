package storage

import (
	"context"
	"errors"
	"io"

	"go-doc-library/internal/model"
)

type Kind string

const (
	KindLocal Kind = "local"
	KindS3    Kind = "s3"
)

var (
	ErrObjectNotFound = errors.New("stored object not found")
	ErrKeyExists      = errors.New("storage key already exists")
)

// StoredObject describes bytes a backend has durably written.
type StoredObject struct {
	OriginalName string
	StorageKey   string
	SizeBytes    int64
	ContentType  string
}

// Backend stores uploaded bytes under generated keys. Keys returned by Store
// are unique and an existing key is never overwritten.
type Backend interface {
	Store(ctx context.Context, content io.Reader, originalName string, size int64, category model.Category) (StoredObject, error)
	// Locate returns an ephemeral pointer to the bytes. Callers must not persist it.
	Locate(ctx context.Context, key string) (model.Locator, error)
	// Delete reports whether an object was removed. A missing key is not an error.
	Delete(ctx context.Context, key string) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Kind() Kind
}

func backendError(kind model.BackendKind, backend Kind, op string, key string, err error) error {
	return &model.BackendError{Kind: kind, Backend: string(backend), Op: op, Key: key, Err: err}
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
