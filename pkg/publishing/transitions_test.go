package publishing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemWith(revs ...*Revision) *Item {
	item := &Item{ID: uuid.New(), Kind: KindArticle}
	for _, rev := range revs {
		item.SetRevision(rev)
	}
	return item
}

func TestNextRevision(t *testing.T) {
	tests := []struct {
		name string
		revs []*Revision
		want int
	}{
		{name: "draft only", revs: []*Revision{{State: StateDraft, Revision: 7}}, want: 0},
		{name: "published 3", revs: []*Revision{{State: StatePublished, Revision: 3}}, want: 4},
		{name: "pending 2", revs: []*Revision{{State: StatePending, Revision: 2}}, want: 3},
		{
			name: "max of pending and published",
			revs: []*Revision{{State: StatePending, Revision: 5}, {State: StatePublished, Revision: 4}},
			want: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextRevision(itemWith(tt.revs...)))
		})
	}
}

func TestPlanPublish(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	earlier := now.Add(-72 * time.Hour)
	future := now.Add(time.Hour)
	past := now.Add(-time.Minute)

	t.Run("no draft", func(t *testing.T) {
		item := itemWith(&Revision{State: StatePublished})
		assert.Nil(t, planPublish(item, PublishRequest{}, now))
	})

	tests := []struct {
		name            string
		existing        *Revision
		req             PublishRequest
		wantState       RevisionState
		wantPublishAt   *time.Time
		wantPublishedAt time.Time
		wantUpdatedAt   time.Time
		wantEmpty       []RevisionState
	}{
		{
			name:            "default publishes now",
			wantState:       StatePublished,
			wantPublishedAt: now,
			wantUpdatedAt:   now,
			wantEmpty:       []RevisionState{StateDraft, StatePending},
		},
		{
			name:            "future goes pending",
			req:             PublishRequest{PublishAt: &future},
			wantState:       StatePending,
			wantPublishAt:   &future,
			wantPublishedAt: future,
			wantUpdatedAt:   future,
			wantEmpty:       []RevisionState{StateDraft},
		},
		{
			name:            "past goes published",
			req:             PublishRequest{PublishAt: &past},
			wantState:       StatePublished,
			wantPublishedAt: past,
			wantUpdatedAt:   past,
			wantEmpty:       []RevisionState{StateDraft, StatePending},
		},
		{
			name:            "republish stamps the publish time",
			existing:        &Revision{State: StatePublished, PublishedAt: &earlier},
			wantState:       StatePublished,
			wantPublishedAt: now,
			wantUpdatedAt:   now,
			wantEmpty:       []RevisionState{StateDraft, StatePending},
		},
		{
			name:            "scheduled update keeps live publishedAt",
			existing:        &Revision{State: StatePublished, PublishedAt: &earlier},
			req:             PublishRequest{PublishAt: &future},
			wantState:       StatePending,
			wantPublishAt:   &future,
			wantPublishedAt: earlier,
			wantUpdatedAt:   future,
			wantEmpty:       []RevisionState{StateDraft},
		},
		{
			name:            "explicit values win",
			existing:        &Revision{State: StatePublished, PublishedAt: &earlier},
			req:             PublishRequest{PublishedAt: &past, UpdatedAt: &future},
			wantState:       StatePublished,
			wantPublishedAt: past,
			wantUpdatedAt:   future,
			wantEmpty:       []RevisionState{StateDraft, StatePending},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := &Revision{ID: uuid.New(), State: StateDraft, Title: "T", Slug: "s", Revision: 2}
			item := itemWith(draft, tt.existing)

			plan := planPublish(item, tt.req, now)
			require.NotNil(t, plan)

			assert.Equal(t, tt.wantState, plan.target.State)
			assert.NotEqual(t, draft.ID, plan.target.ID)
			assert.Equal(t, "s", plan.target.Slug)
			assert.Equal(t, 2, plan.target.Revision)
			assert.Equal(t, tt.wantPublishAt, plan.target.PublishAt)
			assert.Equal(t, tt.wantPublishedAt, *plan.target.PublishedAt)
			assert.Equal(t, tt.wantUpdatedAt, *plan.target.UpdatedAt)
			assert.Equal(t, tt.wantEmpty, plan.empty)
			assert.Nil(t, draft.PublishedAt, "draft must not be mutated")
		})
	}
}

func TestPlanUnpublish(t *testing.T) {
	at := time.Now()

	t.Run("pending is preferred", func(t *testing.T) {
		item := itemWith(
			&Revision{State: StatePending, Title: "pending", PublishAt: &at, PublishedAt: &at, UpdatedAt: &at},
			&Revision{State: StatePublished, Title: "published"},
		)
		draft, err := planUnpublish(item)
		require.NoError(t, err)
		assert.Equal(t, StateDraft, draft.State)
		assert.Equal(t, "pending", draft.Title)
		assert.Nil(t, draft.PublishAt)
		assert.Nil(t, draft.PublishedAt)
		assert.Nil(t, draft.UpdatedAt)
	})

	t.Run("existing draft id is reused", func(t *testing.T) {
		existing := &Revision{ID: uuid.New(), State: StateDraft}
		item := itemWith(existing, &Revision{State: StatePublished, Title: "published"})
		draft, err := planUnpublish(item)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, draft.ID)
		assert.Equal(t, "published", draft.Title)
	})

	t.Run("nothing live", func(t *testing.T) {
		_, err := planUnpublish(itemWith(&Revision{State: StateDraft}))
		assert.True(t, IsUserInput(err))
	})
}

func TestPlanDuplicate(t *testing.T) {
	now := time.Now()
	source := itemWith(
		&Revision{State: StatePending, Title: "pending", Slug: "p", Revision: 4},
		&Revision{State: StatePublished, Title: "published", Slug: "p", Revision: 3},
	)
	source.Shared = true

	dup, err := planDuplicate(source, now)
	require.NoError(t, err)
	assert.NotEqual(t, source.ID, dup.ID)
	assert.True(t, dup.Shared)
	require.NotNil(t, dup.Draft())
	assert.Nil(t, dup.Pending())
	assert.Equal(t, "pending", dup.Draft().Title)
	assert.Empty(t, dup.Draft().Slug)
	assert.Equal(t, 0, dup.Draft().Revision)
	assert.Equal(t, dup.ID, dup.Draft().ItemID)

	_, err = planDuplicate(itemWith(), now)
	assert.True(t, IsUserInput(err))
}

func TestPlanPromote(t *testing.T) {
	now := time.Now()
	due := now.Add(-time.Minute)
	notDue := now.Add(time.Minute)

	assert.Nil(t, planPromote(itemWith(&Revision{State: StateDraft}), now))
	assert.Nil(t, planPromote(itemWith(&Revision{State: StatePending, PublishAt: &notDue}), now))

	rev := planPromote(itemWith(&Revision{State: StatePending, PublishAt: &due, PublishedAt: &due}), now)
	require.NotNil(t, rev)
	assert.Equal(t, StatePublished, rev.State)
	assert.Nil(t, rev.PublishAt)
	assert.Equal(t, due, *rev.PublishedAt)
}

func TestCheckPublishable(t *testing.T) {
	assert.NoError(t, checkPublishable(KindArticle, "free", nil))

	clash := itemWith(
		&Revision{State: StatePublished, Slug: "old"},
		&Revision{State: StatePending, Slug: "taken"},
	)
	err := checkPublishable(KindArticle, "taken", clash)
	require.Error(t, err)
	assert.True(t, IsDuplicateSlug(err))

	var dup *DuplicateSlugError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "taken", dup.Slug)
	assert.Equal(t, clash.ID, dup.ItemID)
}
