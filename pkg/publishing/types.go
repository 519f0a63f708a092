package publishing

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the two content families sharing the revision model.
type Kind string

const (
	KindArticle Kind = "article"
	KindPage    Kind = "page"
)

// IsValid reports whether the kind is known.
func (k Kind) IsValid() bool {
	switch k {
	case KindArticle, KindPage:
		return true
	default:
		return false
	}
}

// Plural returns the collection name used in routes and storage keys.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// RevisionState is the slot a revision occupies on its item.
type RevisionState string

const (
	StateDraft     RevisionState = "draft"
	StatePending   RevisionState = "pending"
	StatePublished RevisionState = "published"
)

// AllStates lists the states in the order they are evaluated for "most
// specific" lookups.
var AllStates = []RevisionState{StateDraft, StatePending, StatePublished}

// IsValid reports whether the state is known.
func (s RevisionState) IsValid() bool {
	switch s {
	case StateDraft, StatePending, StatePublished:
		return true
	default:
		return false
	}
}

// Property is a key/value pair attached to a revision. Only public
// properties are exposed through the public read API.
type Property struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Public bool   `json:"public"`
}

// Revision is a snapshot of an item's content in a single state.
type Revision struct {
	ID          uuid.UUID       `json:"id"`
	ItemID      uuid.UUID       `json:"item_id"`
	State       RevisionState   `json:"state"`
	Revision    int             `json:"revision"`
	Title       string          `json:"title"`
	PreTitle    string          `json:"pre_title,omitempty"`
	Lead        string          `json:"lead,omitempty"`
	SEOTitle    string          `json:"seo_title,omitempty"`
	Description string          `json:"description,omitempty"`
	Slug        string          `json:"slug"`
	Tags        []string        `json:"tags"`
	AuthorIDs   []string        `json:"author_ids"`
	Breaking    bool            `json:"breaking"`
	HideAuthor  bool            `json:"hide_author"`
	ImageID     *uuid.UUID      `json:"image_id,omitempty"`
	Properties  []Property      `json:"properties"`
	Blocks      json.RawMessage `json:"blocks,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at"`
	PublishAt   *time.Time      `json:"publish_at"`
	PublishedAt *time.Time      `json:"published_at"`
}

// Clone returns a deep copy of the revision.
func (r *Revision) Clone() *Revision {
	if r == nil {
		return nil
	}
	c := *r
	c.Tags = cloneStrings(r.Tags)
	c.AuthorIDs = cloneStrings(r.AuthorIDs)
	if r.Properties != nil {
		c.Properties = append(make([]Property, 0, len(r.Properties)), r.Properties...)
	}
	if r.Blocks != nil {
		c.Blocks = append(json.RawMessage(nil), r.Blocks...)
	}
	c.ImageID = cloneUUID(r.ImageID)
	c.UpdatedAt = cloneTime(r.UpdatedAt)
	c.PublishAt = cloneTime(r.PublishAt)
	c.PublishedAt = cloneTime(r.PublishedAt)
	return &c
}

// PublicProperties returns only the properties flagged public.
func (r *Revision) PublicProperties() []Property {
	out := make([]Property, 0, len(r.Properties))
	for _, p := range r.Properties {
		if p.Public {
			out = append(out, p)
		}
	}
	return out
}

// Item is an article or page with its revisions keyed by state.
type Item struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	Shared     bool      `json:"shared"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`

	revisions map[RevisionState]*Revision
}

// Revision returns the revision in the given state or nil.
func (i *Item) Revision(state RevisionState) *Revision {
	if i == nil || i.revisions == nil {
		return nil
	}
	return i.revisions[state]
}

// Draft returns the draft revision or nil.
func (i *Item) Draft() *Revision { return i.Revision(StateDraft) }

// Pending returns the pending revision or nil.
func (i *Item) Pending() *Revision { return i.Revision(StatePending) }

// Published returns the published revision or nil.
func (i *Item) Published() *Revision { return i.Revision(StatePublished) }

// SetRevision stores rev in the slot named by rev.State, replacing whatever
// occupied it. The revision is bound to the item.
func (i *Item) SetRevision(rev *Revision) {
	if rev == nil {
		return
	}
	if i.revisions == nil {
		i.revisions = make(map[RevisionState]*Revision, len(AllStates))
	}
	rev.ItemID = i.ID
	i.revisions[rev.State] = rev
}

// ClearRevision empties the given slot.
func (i *Item) ClearRevision(state RevisionState) {
	delete(i.revisions, state)
}

// Revisions returns the present revisions in draft, pending, published order.
func (i *Item) Revisions() []*Revision {
	out := make([]*Revision, 0, len(i.revisions))
	for _, state := range AllStates {
		if rev := i.Revision(state); rev != nil {
			out = append(out, rev)
		}
	}
	return out
}

// Latest returns the most recent editable source: draft ?? pending ?? published.
func (i *Item) Latest() *Revision {
	for _, state := range AllStates {
		if rev := i.Revision(state); rev != nil {
			return rev
		}
	}
	return nil
}

// Live returns pending ?? published.
func (i *Item) Live() *Revision {
	if rev := i.Pending(); rev != nil {
		return rev
	}
	return i.Published()
}

// Clone returns a deep copy of the item and its revisions.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := &Item{
		ID:         i.ID,
		Kind:       i.Kind,
		Shared:     i.Shared,
		CreatedAt:  i.CreatedAt,
		ModifiedAt: i.ModifiedAt,
	}
	for _, rev := range i.Revisions() {
		c.SetRevision(rev.Clone())
	}
	return c
}

type itemJSON struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	Shared     bool      `json:"shared"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	Draft      *Revision `json:"draft"`
	Pending    *Revision `json:"pending"`
	Published  *Revision `json:"published"`
}

// MarshalJSON renders the revisions as draft, pending and published fields.
func (i *Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{
		ID:         i.ID,
		Kind:       i.Kind,
		Shared:     i.Shared,
		CreatedAt:  i.CreatedAt,
		ModifiedAt: i.ModifiedAt,
		Draft:      i.Draft(),
		Pending:    i.Pending(),
		Published:  i.Published(),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON. Revision states are taken
// from the field they appear under.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Item{
		ID:         raw.ID,
		Kind:       raw.Kind,
		Shared:     raw.Shared,
		CreatedAt:  raw.CreatedAt,
		ModifiedAt: raw.ModifiedAt,
	}
	for state, rev := range map[RevisionState]*Revision{
		StateDraft:     raw.Draft,
		StatePending:   raw.Pending,
		StatePublished: raw.Published,
	} {
		if rev != nil {
			rev.State = state
			i.SetRevision(rev)
		}
	}
	return nil
}

// PublishedItem is the public view of an item: its identity plus the
// published revision.
type PublishedItem struct {
	ID       uuid.UUID `json:"id"`
	Kind     Kind      `json:"kind"`
	Shared   bool      `json:"shared"`
	Revision *Revision `json:"revision"`
}

// PageInfo describes the position of a page within the full result set.
type PageInfo struct {
	HasPreviousPage bool       `json:"has_previous_page"`
	HasNextPage     bool       `json:"has_next_page"`
	StartCursor     *uuid.UUID `json:"start_cursor"`
	EndCursor       *uuid.UUID `json:"end_cursor"`
}

// ItemConnection is a page of items.
type ItemConnection struct {
	Nodes      []*Item  `json:"nodes"`
	TotalCount int      `json:"total_count"`
	PageInfo   PageInfo `json:"page_info"`
}

// PublishedConnection is a page of public item views.
type PublishedConnection struct {
	Nodes      []*PublishedItem `json:"nodes"`
	TotalCount int              `json:"total_count"`
	PageInfo   PageInfo         `json:"page_info"`
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
