package publishing_test

import (
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

func TestLess(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(name string, publishedAt *time.Time) *publishing.Item {
		item := &publishing.Item{ID: uuid.New(), CreatedAt: base}
		if publishedAt != nil {
			item.SetRevision(&publishing.Revision{State: publishing.StatePublished, Title: name, PublishedAt: publishedAt})
		} else {
			item.SetRevision(&publishing.Revision{State: publishing.StateDraft, Title: name})
		}
		return item
	}
	t1, t2 := base.Add(time.Hour), base.Add(2*time.Hour)
	early, late, unpublished := mk("early", &t1), mk("late", &t2), mk("none", nil)

	titles := func(items []*publishing.Item) []string {
		var out []string
		for _, item := range items {
			out = append(out, item.Latest().Title)
		}
		return out
	}

	items := []*publishing.Item{unpublished, late, early}
	sort.Slice(items, func(i, j int) bool {
		return publishing.Less(items[i], items[j], publishing.SortPublishedAt, publishing.SortAscending)
	})
	assert.Equal(t, []string{"early", "late", "none"}, titles(items))

	sort.Slice(items, func(i, j int) bool {
		return publishing.Less(items[i], items[j], publishing.SortPublishedAt, publishing.SortDescending)
	})
	assert.Equal(t, []string{"none", "late", "early"}, titles(items))
}

func TestSortValue(t *testing.T) {
	at := time.Now()
	item := &publishing.Item{ID: uuid.New(), CreatedAt: at, ModifiedAt: at.Add(time.Minute)}
	item.SetRevision(&publishing.Revision{State: publishing.StatePending, PublishAt: &at})

	assert.Equal(t, at, *publishing.SortValue(item, publishing.SortCreatedAt))
	assert.Equal(t, at.Add(time.Minute), *publishing.SortValue(item, publishing.SortModifiedAt))
	assert.Equal(t, at, *publishing.SortValue(item, publishing.SortPublishAt))
	assert.Nil(t, publishing.SortValue(item, publishing.SortPublishedAt))
	assert.Nil(t, publishing.SortValue(item, publishing.SortUpdatedAt))
}
