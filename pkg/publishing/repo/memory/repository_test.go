package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wepublish/wepublish-api/pkg/publishing"
	"github.com/wepublish/wepublish-api/pkg/publishing/repo/memory"
)

func newItem(kind publishing.Kind, createdAt time.Time, revs ...*publishing.Revision) *publishing.Item {
	item := &publishing.Item{ID: uuid.New(), Kind: kind, CreatedAt: createdAt, ModifiedAt: createdAt}
	for _, rev := range revs {
		if rev.ID == uuid.Nil {
			rev.ID = uuid.New()
		}
		item.SetRevision(rev)
	}
	return item
}

func TestMemoryRepository_ItemOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	now := time.Now()

	item := newItem(publishing.KindArticle, now, &publishing.Revision{State: publishing.StateDraft, Title: "Draft"})

	t.Run("CreateItem", func(t *testing.T) {
		require.NoError(t, repo.CreateItem(ctx, item))
		assert.Error(t, repo.CreateItem(ctx, item), "duplicate id")
	})

	t.Run("GetItem returns a copy", func(t *testing.T) {
		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		got.Draft().Title = "changed"

		again, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "Draft", again.Draft().Title)
	})

	t.Run("GetItem_NotFound", func(t *testing.T) {
		got, err := repo.GetItem(ctx, uuid.New())
		assert.Nil(t, got)
		assert.Equal(t, publishing.ErrNotFound, err)
	})

	t.Run("PutRevision replaces the slot", func(t *testing.T) {
		rev := &publishing.Revision{ID: uuid.New(), ItemID: item.ID, State: publishing.StateDraft, Title: "Second", Revision: 1}
		require.NoError(t, repo.PutRevision(ctx, rev))

		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Len(t, got.Revisions(), 1)
		assert.Equal(t, "Second", got.Draft().Title)
	})

	t.Run("DeleteRevision", func(t *testing.T) {
		require.NoError(t, repo.DeleteRevision(ctx, item.ID, publishing.StateDraft))
		require.NoError(t, repo.DeleteRevision(ctx, item.ID, publishing.StateDraft))

		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Draft())
	})

	t.Run("DeleteItem", func(t *testing.T) {
		require.NoError(t, repo.DeleteItem(ctx, item.ID))
		assert.ErrorIs(t, repo.DeleteItem(ctx, item.ID), publishing.ErrNotFound)
	})
}

func TestMemoryRepository_Transactions(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	item := newItem(publishing.KindArticle, time.Now(), &publishing.Revision{State: publishing.StateDraft, Title: "Draft"})
	require.NoError(t, repo.CreateItem(ctx, item))

	t.Run("rollback restores state", func(t *testing.T) {
		boom := errors.New("boom")
		err := repo.WithTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, repo.DeleteRevision(ctx, item.ID, publishing.StateDraft))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.NotNil(t, got.Draft())
	})

	t.Run("nested transactions join", func(t *testing.T) {
		err := repo.WithTransaction(ctx, func(ctx context.Context) error {
			return repo.WithTransaction(ctx, func(ctx context.Context) error {
				return repo.DeleteRevision(ctx, item.ID, publishing.StateDraft)
			})
		})
		require.NoError(t, err)

		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Draft())
	})
}

func TestMemoryRepository_FindBySlug(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	now := time.Now()

	published := newItem(publishing.KindArticle, now, &publishing.Revision{State: publishing.StatePublished, Slug: "taken"})
	draftOnly := newItem(publishing.KindArticle, now, &publishing.Revision{State: publishing.StateDraft, Slug: "draft-slug"})
	page := newItem(publishing.KindPage, now, &publishing.Revision{State: publishing.StatePublished, Slug: "taken"})
	for _, item := range []*publishing.Item{published, draftOnly, page} {
		require.NoError(t, repo.CreateItem(ctx, item))
	}
	live := []publishing.RevisionState{publishing.StatePending, publishing.StatePublished}

	found, err := repo.FindBySlug(ctx, publishing.KindArticle, "taken", live, uuid.Nil)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, published.ID, found.ID)

	found, err = repo.FindBySlug(ctx, publishing.KindArticle, "taken", live, published.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.FindBySlug(ctx, publishing.KindArticle, "draft-slug", live, uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestMemoryRepository_ListItems(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		item := newItem(publishing.KindArticle, base.Add(time.Duration(i)*time.Hour),
			&publishing.Revision{State: publishing.StateDraft, Title: fmt.Sprintf("Item %d", i)})
		require.NoError(t, repo.CreateItem(ctx, item))
		ids = append(ids, item.ID)
	}
	require.NoError(t, repo.CreateItem(ctx, newItem(publishing.KindPage, base)))

	query := publishing.Query{
		Kind:  publishing.KindArticle,
		Where: publishing.Filter{}.Expr(),
		Sort:  publishing.SortCreatedAt,
		Order: publishing.SortAscending,
	}

	t.Run("all", func(t *testing.T) {
		items, total, err := repo.ListItems(ctx, query)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, items, 5)
		assert.Equal(t, ids[0], items[0].ID)
	})

	t.Run("cursor skip and limit", func(t *testing.T) {
		q := query
		q.Cursor = &ids[1]
		q.Skip = 1
		q.Limit = 2
		items, total, err := repo.ListItems(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, items, 2)
		assert.Equal(t, ids[2], items[0].ID)
		assert.Equal(t, ids[3], items[1].ID)
	})

	t.Run("unknown cursor", func(t *testing.T) {
		q := query
		unknown := uuid.New()
		q.Cursor = &unknown
		items, _, err := repo.ListItems(ctx, q)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("descending", func(t *testing.T) {
		q := query
		q.Order = publishing.SortDescending
		q.Limit = 1
		items, _, err := repo.ListItems(ctx, q)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, ids[4], items[0].ID)
	})
}

func TestMemoryRepository_ListDuePending(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	now := time.Now()
	due, notDue := now.Add(-time.Minute), now.Add(time.Minute)

	dueItem := newItem(publishing.KindArticle, now, &publishing.Revision{State: publishing.StatePending, PublishAt: &due})
	futureItem := newItem(publishing.KindArticle, now, &publishing.Revision{State: publishing.StatePending, PublishAt: &notDue})
	duePage := newItem(publishing.KindPage, now, &publishing.Revision{State: publishing.StatePending, PublishAt: &due})
	for _, item := range []*publishing.Item{dueItem, futureItem, duePage} {
		require.NoError(t, repo.CreateItem(ctx, item))
	}

	ids, err := repo.ListDuePending(ctx, publishing.KindArticle, now)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{dueItem.ID}, ids)
}
