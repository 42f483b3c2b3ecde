package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-doc-library/internal/model"
)

type auditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, int, error)
}

func runAuditContract(t *testing.T, newStore func(t *testing.T) auditStore) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, store auditStore) {
		t.Helper()

		entries := []model.AuditEntry{
			{Action: model.AuditUpload, Status: model.AuditSuccess, Category: model.CategoryResumes, VersionID: "v-1", Actor: model.AuditActor{UserID: "alice"}},
			{Action: model.AuditUpload, Status: model.AuditFailure, Category: model.CategoryProjects, Actor: model.AuditActor{UserID: "bob"}, Error: "INVALID_EXTENSION: nope"},
			{Action: model.AuditActivate, Status: model.AuditSuccess, Category: model.CategoryResumes, VersionID: "v-1", Actor: model.AuditActor{UserID: "alice"}},
			{Action: model.AuditDelete, Status: model.AuditSuccess, Category: model.CategoryResumes, VersionID: "v-1", Actor: model.AuditActor{UserID: "bob"}},
		}
		for i, entry := range entries {
			entry.OccurredAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, store.Log(ctx, entry))
		}
	}

	t.Run("newest first with total", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)

		items, total, err := store.Query(ctx, model.AuditQuery{Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Equal(t, 4, total)
		require.Len(t, items, 4)
		require.Equal(t, model.AuditDelete, items[0].Action)
		require.Equal(t, model.AuditUpload, items[3].Action)
		require.True(t, items[0].OccurredAt.Equal(base.Add(3*time.Minute)))
	})

	t.Run("filters", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)

		items, total, err := store.Query(ctx, model.AuditQuery{Category: model.CategoryResumes, ActorID: "alice", Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Equal(t, model.AuditActivate, items[0].Action)

		items, total, err = store.Query(ctx, model.AuditQuery{Status: model.AuditFailure, Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.Equal(t, model.CategoryProjects, items[0].Category)
		require.Equal(t, "INVALID_EXTENSION: nope", items[0].Error)

		_, total, err = store.Query(ctx, model.AuditQuery{
			From:  base.Add(time.Minute),
			To:    base.Add(2 * time.Minute),
			Page:  1,
			Limit: 10,
		})
		require.NoError(t, err)
		require.Equal(t, 2, total)
	})

	t.Run("pagination", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)

		items, total, err := store.Query(ctx, model.AuditQuery{Page: 2, Limit: 3})
		require.NoError(t, err)
		require.Equal(t, 4, total)
		require.Len(t, items, 1)
		require.Equal(t, model.AuditUpload, items[0].Action)

		items, _, err = store.Query(ctx, model.AuditQuery{Page: 5, Limit: 3})
		require.NoError(t, err)
		require.Empty(t, items)
	})
}
