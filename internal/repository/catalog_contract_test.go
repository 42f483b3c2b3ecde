package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-doc-library/internal/model"
)

type catalog interface {
	CreateActive(ctx context.Context, record model.VersionRecord) (model.VersionRecord, error)
	ListAll(ctx context.Context, category model.Category, includeDeleted bool) ([]model.VersionRecord, error)
	GetByID(ctx context.Context, category model.Category, id string) (model.VersionRecord, error)
	GetActive(ctx context.Context, category model.Category) (model.VersionRecord, error)
	SetActiveExclusive(ctx context.Context, category model.Category, id string) (model.VersionRecord, error)
	SoftDelete(ctx context.Context, category model.Category, id string) (model.VersionRecord, error)
}

func newRecord(category model.Category, name string) model.VersionRecord {
	return model.VersionRecord{
		Category:   category,
		FileName:   name,
		StorageKey: fmt.Sprintf("%s/%s_%s", category, uuid.NewString()[:8], name),
		SizeBytes:  1024,
		MimeType:   "application/pdf",
		UploadedBy: "admin-1",
	}
}

func activeCount(t *testing.T, repo catalog, category model.Category) int {
	t.Helper()

	records, err := repo.ListAll(context.Background(), category, true)
	require.NoError(t, err)

	count := 0
	for _, rec := range records {
		if rec.IsActive {
			count++
			require.Nil(t, rec.DeletedAt, "deleted version must not be active")
		}
	}
	return count
}

// runCatalogContract exercises behavior every catalog implementation shares.
// newRepo must return an empty catalog.
func runCatalogContract(t *testing.T, newRepo func(t *testing.T) catalog) {
	ctx := context.Background()

	t.Run("create active replaces the previous active version", func(t *testing.T) {
		repo := newRepo(t)

		first, err := repo.CreateActive(ctx, newRecord(model.CategoryResumes, "a.pdf"))
		require.NoError(t, err)
		require.True(t, first.IsActive)
		require.NotEmpty(t, first.ID)

		second, err := repo.CreateActive(ctx, newRecord(model.CategoryResumes, "b.pdf"))
		require.NoError(t, err)

		active, err := repo.GetActive(ctx, model.CategoryResumes)
		require.NoError(t, err)
		require.Equal(t, second.ID, active.ID)

		reloaded, err := repo.GetByID(ctx, model.CategoryResumes, first.ID)
		require.NoError(t, err)
		require.Equal(t, model.StateInactive, reloaded.State())
		require.Equal(t, 1, activeCount(t, repo, model.CategoryResumes))
	})

	t.Run("categories are independent", func(t *testing.T) {
		repo := newRepo(t)

		resume, err := repo.CreateActive(ctx, newRecord(model.CategoryResumes, "cv.pdf"))
		require.NoError(t, err)
		_, err = repo.CreateActive(ctx, newRecord(model.CategoryProfile, "me.png"))
		require.NoError(t, err)

		active, err := repo.GetActive(ctx, model.CategoryResumes)
		require.NoError(t, err)
		require.Equal(t, resume.ID, active.ID)

		_, err = repo.GetByID(ctx, model.CategoryProfile, resume.ID)
		require.ErrorIs(t, err, model.ErrVersionNotFound)
	})

	t.Run("history is newest first and hides deleted versions by default", func(t *testing.T) {
		repo := newRepo(t)

		a, err := repo.CreateActive(ctx, newRecord(model.CategoryProjects, "a.png"))
		require.NoError(t, err)
		b, err := repo.CreateActive(ctx, newRecord(model.CategoryProjects, "b.png"))
		require.NoError(t, err)
		c, err := repo.CreateActive(ctx, newRecord(model.CategoryProjects, "c.png"))
		require.NoError(t, err)

		_, err = repo.SoftDelete(ctx, model.CategoryProjects, b.ID)
		require.NoError(t, err)

		visible, err := repo.ListAll(ctx, model.CategoryProjects, false)
		require.NoError(t, err)
		require.Equal(t, []string{c.ID, a.ID}, ids(visible))

		all, err := repo.ListAll(ctx, model.CategoryProjects, true)
		require.NoError(t, err)
		require.Equal(t, []string{c.ID, b.ID, a.ID}, ids(all))
	})

	t.Run("set active exclusive", func(t *testing.T) {
		repo := newRepo(t)

		a, err := repo.CreateActive(ctx, newRecord(model.CategoryResumes, "a.pdf"))
		require.NoError(t, err)
		b, err := repo.CreateActive(ctx, newRecord(model.CategoryResumes, "b.pdf"))
		require.NoError(t, err)

		activated, err := repo.SetActiveExclusive(ctx, model.CategoryResumes, a.ID)
		require.NoError(t, err)
		require.True(t, activated.IsActive)

		again, err := repo.SetActiveExclusive(ctx, model.CategoryResumes, a.ID)
		require.NoError(t, err)
		require.Equal(t, a.ID, again.ID)

		reloaded, err := repo.GetByID(ctx, model.CategoryResumes, b.ID)
		require.NoError(t, err)
		require.False(t, reloaded.IsActive)
		require.Equal(t, 1, activeCount(t, repo, model.CategoryResumes))

		_, err = repo.SetActiveExclusive(ctx, model.CategoryResumes, uuid.NewString())
		require.ErrorIs(t, err, model.ErrVersionNotFound)

		_, err = repo.SetActiveExclusive(ctx, model.CategoryResumes, "not-a-uuid")
		require.ErrorIs(t, err, model.ErrVersionNotFound)

		_, err = repo.SoftDelete(ctx, model.CategoryResumes, b.ID)
		require.NoError(t, err)
		_, err = repo.SetActiveExclusive(ctx, model.CategoryResumes, b.ID)
		require.ErrorIs(t, err, model.ErrVersionDeleted)
	})

	t.Run("soft delete is terminal and idempotent", func(t *testing.T) {
		repo := newRepo(t)

		a, err := repo.CreateActive(ctx, newRecord(model.CategoryResumes, "a.pdf"))
		require.NoError(t, err)

		deleted, err := repo.SoftDelete(ctx, model.CategoryResumes, a.ID)
		require.NoError(t, err)
		require.NotNil(t, deleted.DeletedAt)
		require.False(t, deleted.IsActive)

		_, err = repo.GetActive(ctx, model.CategoryResumes)
		require.ErrorIs(t, err, model.ErrNoActiveVersion)

		again, err := repo.SoftDelete(ctx, model.CategoryResumes, a.ID)
		require.NoError(t, err)
		require.True(t, deleted.DeletedAt.Equal(*again.DeletedAt))

		_, err = repo.SoftDelete(ctx, model.CategoryResumes, uuid.NewString())
		require.ErrorIs(t, err, model.ErrVersionNotFound)
	})

	t.Run("duplicate storage keys are rejected", func(t *testing.T) {
		repo := newRepo(t)

		rec := newRecord(model.CategoryResumes, "a.pdf")
		_, err := repo.CreateActive(ctx, rec)
		require.NoError(t, err)

		dup := newRecord(model.CategoryResumes, "b.pdf")
		dup.StorageKey = rec.StorageKey
		_, err = repo.CreateActive(ctx, dup)
		require.ErrorIs(t, err, model.ErrDuplicateStorageKey)
	})

	t.Run("duplicate ids are rejected", func(t *testing.T) {
		repo := newRepo(t)

		rec, err := repo.CreateActive(ctx, newRecord(model.CategoryResumes, "a.pdf"))
		require.NoError(t, err)

		dup := newRecord(model.CategoryResumes, "b.pdf")
		dup.ID = rec.ID
		_, err = repo.CreateActive(ctx, dup)
		require.ErrorIs(t, err, model.ErrDuplicateVersionID)
		require.NotErrorIs(t, err, model.ErrDuplicateStorageKey)

		active, err := repo.GetActive(ctx, model.CategoryResumes)
		require.NoError(t, err)
		require.Equal(t, rec.ID, active.ID)
	})

	t.Run("concurrent activations leave exactly one active version", func(t *testing.T) {
		repo := newRepo(t)

		created := make([]model.VersionRecord, 0, 6)
		for i := range 6 {
			rec, err := repo.CreateActive(ctx, newRecord(model.CategoryResumes, fmt.Sprintf("v%d.pdf", i)))
			require.NoError(t, err)
			created = append(created, rec)
		}

		var wg sync.WaitGroup
		for round := range 4 {
			for _, rec := range created {
				wg.Add(1)
				go func(id string) {
					defer wg.Done()
					_, err := repo.SetActiveExclusive(ctx, model.CategoryResumes, id)
					assert.NoError(t, err)
				}(rec.ID)
			}
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := repo.CreateActive(ctx, newRecord(model.CategoryResumes, fmt.Sprintf("late%d.pdf", n)))
				assert.NoError(t, err)
			}(round)
		}
		wg.Wait()

		require.Equal(t, 1, activeCount(t, repo, model.CategoryResumes))
	})
}

func ids(records []model.VersionRecord) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ID)
	}
	return out
}
