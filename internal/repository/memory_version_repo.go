package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-doc-library/internal/model"
)

type memoryVersion struct {
	record model.VersionRecord
	seq    uint64
}

// MemoryVersionRepository is a process local catalog with the same semantics
// as VersionRepository. It is used when no database is configured and in tests.
type MemoryVersionRepository struct {
	mu       sync.Mutex
	versions map[string]*memoryVersion
	keys     map[string]struct{}
	seq      uint64
	now      func() time.Time
}

func NewMemoryVersionRepository() *MemoryVersionRepository {
	return &MemoryVersionRepository{
		versions: make(map[string]*memoryVersion),
		keys:     make(map[string]struct{}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryVersionRepository) CreateActive(_ context.Context, record model.VersionRecord) (model.VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.keys[record.StorageKey]; exists {
		return model.VersionRecord{}, model.ErrDuplicateStorageKey
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if _, exists := r.versions[record.ID]; exists {
		return model.VersionRecord{}, model.ErrDuplicateVersionID
	}

	for _, v := range r.versions {
		if v.record.Category == record.Category {
			v.record.IsActive = false
		}
	}

	r.seq++
	record.IsActive = true
	record.CreatedAt = r.now()
	record.DeletedAt = nil
	r.versions[record.ID] = &memoryVersion{record: record, seq: r.seq}
	r.keys[record.StorageKey] = struct{}{}

	return record, nil
}

func (r *MemoryVersionRepository) ListAll(_ context.Context, category model.Category, includeDeleted bool) ([]model.VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*memoryVersion, 0)
	for _, v := range r.versions {
		if v.record.Category != category {
			continue
		}
		if !includeDeleted && v.record.IsDeleted() {
			continue
		}
		matched = append(matched, v)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.record.CreatedAt.Equal(b.record.CreatedAt) {
			return a.record.CreatedAt.After(b.record.CreatedAt)
		}
		return a.seq > b.seq
	})

	records := make([]model.VersionRecord, 0, len(matched))
	for _, v := range matched {
		records = append(records, copyRecord(v.record))
	}
	return records, nil
}

func (r *MemoryVersionRepository) GetByID(_ context.Context, category model.Category, id string) (model.VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.lookup(category, id)
	if err != nil {
		return model.VersionRecord{}, err
	}
	return copyRecord(v.record), nil
}

func (r *MemoryVersionRepository) GetActive(_ context.Context, category model.Category) (model.VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.versions {
		if v.record.Category == category && v.record.State() == model.StateActive {
			return copyRecord(v.record), nil
		}
	}
	return model.VersionRecord{}, model.ErrNoActiveVersion
}

func (r *MemoryVersionRepository) SetActiveExclusive(_ context.Context, category model.Category, id string) (model.VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, err := r.lookup(category, id)
	if err != nil {
		return model.VersionRecord{}, err
	}
	if target.record.IsDeleted() {
		return model.VersionRecord{}, model.ErrVersionDeleted
	}

	for _, v := range r.versions {
		if v.record.Category == category {
			v.record.IsActive = false
		}
	}
	target.record.IsActive = true

	return copyRecord(target.record), nil
}

func (r *MemoryVersionRepository) SoftDelete(_ context.Context, category model.Category, id string) (model.VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, err := r.lookup(category, id)
	if err != nil {
		return model.VersionRecord{}, err
	}

	if target.record.DeletedAt == nil {
		deletedAt := r.now()
		target.record.DeletedAt = &deletedAt
	}
	target.record.IsActive = false

	return copyRecord(target.record), nil
}

func (r *MemoryVersionRepository) lookup(category model.Category, id string) (*memoryVersion, error) {
	v, ok := r.versions[id]
	if !ok || v.record.Category != category {
		return nil, model.ErrVersionNotFound
	}
	return v, nil
}

func copyRecord(rec model.VersionRecord) model.VersionRecord {
	if rec.DeletedAt != nil {
		deletedAt := *rec.DeletedAt
		rec.DeletedAt = &deletedAt
	}
	return rec
}
