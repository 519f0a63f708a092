package archive_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wepublish/wepublish-api/internal/testutil"
	"github.com/wepublish/wepublish-api/pkg/publishing"
	"github.com/wepublish/wepublish-api/pkg/publishing/archive"
	"github.com/wepublish/wepublish-api/pkg/publishing/repo/memory"
	memorystorage "github.com/wepublish/wepublish-api/pkg/publishing/storage/memory"
)

func TestSink_WritesHistoryAndLatest(t *testing.T) {
	store := memorystorage.New()
	clock := testutil.FixedClock()
	sink := archive.NewSink(store, clock)
	ctx := context.Background()

	item := &publishing.Item{ID: uuid.New(), Kind: publishing.KindArticle, CreatedAt: clock.Now()}
	item.SetRevision(&publishing.Revision{ID: uuid.New(), State: publishing.StateDraft, Title: "Draft"})

	require.NoError(t, sink.ItemCreated(ctx, item))
	clock.Advance(time.Minute)
	require.NoError(t, sink.ItemPublished(ctx, item))
	clock.Advance(time.Minute)
	require.NoError(t, sink.ItemDeleted(ctx, item))

	prefix := "articles/" + item.ID.String() + "/"
	keys, err := store.List(ctx, prefix)
	require.NoError(t, err)
	assert.Equal(t, []string{
		prefix + "history/20240115T103000.000000000Z-created.json",
		prefix + "history/20240115T103100.000000000Z-published.json",
		prefix + "history/20240115T103200.000000000Z-deleted.json",
		prefix + "latest.json",
	}, keys)

	snapshot, err := sink.Latest(ctx, publishing.KindArticle, item.ID)
	require.NoError(t, err)
	assert.Equal(t, archive.EventDeleted, snapshot.Event)
	assert.True(t, clock.Now().Equal(snapshot.At))
	require.NotNil(t, snapshot.Item.Draft())
	assert.Equal(t, "Draft", snapshot.Item.Draft().Title)

	history, err := sink.History(ctx, publishing.KindArticle, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, archive.EventCreated, history[0].Event)
	assert.Equal(t, archive.EventPublished, history[1].Event)
	assert.Equal(t, archive.EventDeleted, history[2].Event)

	meta, err := store.Stat(ctx, archive.LatestKey(publishing.KindArticle, item.ID))
	require.NoError(t, err)
	assert.Equal(t, "application/json", meta.ContentType)
}

func TestSink_Latest_Missing(t *testing.T) {
	sink := archive.NewSink(memorystorage.New(), nil)
	_, err := sink.Latest(context.Background(), publishing.KindPage, uuid.New())
	assert.ErrorIs(t, err, archive.ErrObjectNotFound)
}

type failingStore struct {
	archive.BlobStore
}

func (failingStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	return errors.New("disk full")
}

func TestSink_PutFailure(t *testing.T) {
	sink := archive.NewSink(failingStore{}, testutil.FixedClock())
	item := &publishing.Item{ID: uuid.New(), Kind: publishing.KindPage}

	err := sink.ItemUpdated(context.Background(), item)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "disk full"))
}

func TestSink_History_Empty(t *testing.T) {
	sink := archive.NewSink(memorystorage.New(), nil)
	history, err := sink.History(context.Background(), publishing.KindPage, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSink_WithService(t *testing.T) {
	store := memorystorage.New()
	clock := testutil.FixedClock()
	svc, err := publishing.New(
		publishing.WithKind(publishing.KindPage),
		publishing.WithRepository(memory.New()),
		publishing.WithClock(clock),
		publishing.WithEventSink(archive.NewSink(store, clock)),
	)
	require.NoError(t, err)

	item, err := svc.Create(context.Background(), testutil.AdminSession(), publishing.CreateRequest{RevisionInput: testutil.Draft("About", "about")})
	require.NoError(t, err)

	_, err = store.Stat(context.Background(), archive.LatestKey(publishing.KindPage, item.ID))
	assert.NoError(t, err)
}
