package publishing

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// nextRevision returns the revision number for a rewritten draft: one past
// the highest live revision, or 0 when nothing is live.
func nextRevision(item *Item) int {
	next := 0
	for _, rev := range []*Revision{item.Pending(), item.Published()} {
		if rev != nil && rev.Revision+1 > next {
			next = rev.Revision + 1
		}
	}
	return next
}

// newDraft builds the initial revision of a freshly created item.
func newDraft(in RevisionInput, now time.Time) *Revision {
	rev := &Revision{
		ID:        uuid.New(),
		State:     StateDraft,
		Revision:  0,
		CreatedAt: now,
	}
	applyInput(rev, in)
	return rev
}

// planUpdate builds the draft that replaces the current one. The draft keeps
// its id and creation time when it already exists.
func planUpdate(item *Item, in RevisionInput, now time.Time) *Revision {
	rev := &Revision{
		ID:        uuid.New(),
		State:     StateDraft,
		Revision:  nextRevision(item),
		CreatedAt: now,
		UpdatedAt: &now,
	}
	if draft := item.Draft(); draft != nil {
		rev.ID = draft.ID
		rev.CreatedAt = draft.CreatedAt
	}
	applyInput(rev, in)
	return rev
}

// publishPlan is the outcome of a publish: the revision to write and the
// slots to clear.
type publishPlan struct {
	target *Revision
	empty  []RevisionState
}

// planPublish moves the draft to pending when publishAt lies after now and
// to published otherwise. It returns nil when there is no draft.
func planPublish(item *Item, req PublishRequest, now time.Time) *publishPlan {
	draft := item.Draft()
	if draft == nil {
		return nil
	}

	publishAt := now
	if req.PublishAt != nil {
		publishAt = *req.PublishAt
	}

	scheduled := publishAt.After(now)

	// A scheduled revision inherits the live revision's publishedAt. A
	// revision going live now is stamped with its own publish time.
	publishedAt := publishAt
	if req.PublishedAt != nil {
		publishedAt = *req.PublishedAt
	} else if published := item.Published(); scheduled && published != nil && published.PublishedAt != nil {
		publishedAt = *published.PublishedAt
	}

	updatedAt := publishAt
	if req.UpdatedAt != nil {
		updatedAt = *req.UpdatedAt
	}

	target := draft.Clone()
	target.ID = uuid.New()
	target.PublishedAt = &publishedAt
	target.UpdatedAt = &updatedAt

	if scheduled {
		target.State = StatePending
		target.PublishAt = &publishAt
		return &publishPlan{target: target, empty: []RevisionState{StateDraft}}
	}

	target.State = StatePublished
	target.PublishAt = nil
	return &publishPlan{target: target, empty: []RevisionState{StateDraft, StatePending}}
}

// planUnpublish copies pending ?? published back into the draft with its
// publish timestamps cleared.
func planUnpublish(item *Item) (*Revision, error) {
	source := item.Live()
	if source == nil {
		return nil, userInput("%s %s has nothing to unpublish", item.Kind, item.ID)
	}

	draft := source.Clone()
	draft.ID = uuid.New()
	if existing := item.Draft(); existing != nil {
		draft.ID = existing.ID
	}
	draft.State = StateDraft
	draft.PublishAt = nil
	draft.PublishedAt = nil
	draft.UpdatedAt = nil
	return draft, nil
}

// planDuplicate copies the latest revision of source into the draft of a new
// item with the slug cleared and the history reset.
func planDuplicate(source *Item, now time.Time) (*Item, error) {
	latest := source.Latest()
	if latest == nil {
		return nil, userInput("%s %s has no revision to duplicate", source.Kind, source.ID)
	}

	dup := &Item{
		ID:         uuid.New(),
		Kind:       source.Kind,
		Shared:     source.Shared,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	draft := latest.Clone()
	draft.ID = uuid.New()
	draft.State = StateDraft
	draft.Revision = 0
	draft.Slug = ""
	draft.CreatedAt = now
	draft.UpdatedAt = nil
	draft.PublishAt = nil
	draft.PublishedAt = nil
	dup.SetRevision(draft)
	return dup, nil
}

// planPromote turns a due pending revision into the published one. It
// returns nil when the pending revision is missing or not yet due.
func planPromote(item *Item, now time.Time) *Revision {
	pending := item.Pending()
	if pending == nil || pending.PublishAt == nil || pending.PublishAt.After(now) {
		return nil
	}

	published := pending.Clone()
	published.ID = uuid.New()
	published.State = StatePublished
	published.PublishAt = nil
	return published
}

// checkPublishable enforces the slug guard result: a clash with another
// item over slug is a DuplicateSlugError.
func checkPublishable(kind Kind, slug string, clash *Item) error {
	if clash == nil {
		return nil
	}
	return &DuplicateSlugError{Kind: kind, ItemID: clash.ID, Slug: slug}
}

func applyInput(rev *Revision, in RevisionInput) {
	rev.Title = in.Title
	rev.PreTitle = in.PreTitle
	rev.Lead = in.Lead
	rev.SEOTitle = in.SEOTitle
	rev.Description = in.Description
	rev.Slug = in.Slug
	rev.Tags = append([]string{}, in.Tags...)
	rev.AuthorIDs = append([]string{}, in.AuthorIDs...)
	rev.Breaking = in.Breaking
	rev.HideAuthor = in.HideAuthor
	rev.ImageID = cloneUUID(in.ImageID)
	rev.Properties = append([]Property{}, in.Properties...)
	if in.Blocks != nil {
		rev.Blocks = append(json.RawMessage(nil), in.Blocks...)
	}
}
