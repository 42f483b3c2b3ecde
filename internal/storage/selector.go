package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go-doc-library/internal/model"
)

type SelectorConfig struct {
	Kind      string
	LocalRoot string
	S3        S3Config
}

// Selector resolves the configured backend once per process. The first
// result, backend or error, is returned to every later caller; there is no
// fallback to another kind.
type Selector struct {
	cfg     SelectorConfig
	once    sync.Once
	backend Backend
	err     error

	newLocal func(root string) (Backend, error)
	newS3    func(ctx context.Context, cfg S3Config) (Backend, error)
}

func NewSelector(cfg SelectorConfig) *Selector {
	return &Selector{
		cfg: cfg,
		newLocal: func(root string) (Backend, error) {
			backend, err := NewLocalBackend(root)
			if err != nil {
				return nil, err
			}
			return backend, nil
		},
		newS3: func(ctx context.Context, cfg S3Config) (Backend, error) {
			backend, err := NewS3Backend(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return backend, nil
		},
	}
}

// ParseKind normalizes a configured backend name. "object-store" is accepted
// as an alias for s3 and an empty value means local.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(KindLocal):
		return KindLocal, nil
	case string(KindS3), "object-store":
		return KindS3, nil
	default:
		return "", backendError(model.BackendConfigurationMissing, Kind(raw), "select", "",
			fmt.Errorf("unknown storage backend %q", raw))
	}
}

func (s *Selector) Select(ctx context.Context) (Backend, error) {
	s.once.Do(func() {
		s.backend, s.err = s.resolve(ctx)
		if s.err != nil {
			slog.Error("storage backend unavailable", "backend", s.cfg.Kind, "error", s.err)
			return
		}
		slog.Info("storage backend selected", "backend", s.backend.Kind())
	})

	return s.backend, s.err
}

func (s *Selector) resolve(ctx context.Context) (Backend, error) {
	kind, err := ParseKind(s.cfg.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindS3:
		return s.newS3(ctx, s.cfg.S3)
	default:
		if strings.TrimSpace(s.cfg.LocalRoot) == "" {
			return nil, backendError(model.BackendConfigurationMissing, KindLocal, "select", "", fmt.Errorf("missing UPLOAD_DIR"))
		}
		return s.newLocal(s.cfg.LocalRoot)
	}
}

// NewStaticSelector returns a Selector already resolved to backend.
func NewStaticSelector(backend Backend) *Selector {
	s := &Selector{backend: backend}
	s.once.Do(func() {})
	return s
}
