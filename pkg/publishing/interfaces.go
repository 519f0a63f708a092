package publishing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// Repository defines the interface for item and revision persistence
type Repository interface {
	// WithTransaction runs fn in a transaction carried by the context passed
	// to fn. The transaction commits when fn returns nil and rolls back
	// otherwise. Nested calls join the outer transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Item operations
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	UpdateItem(ctx context.Context, item *Item) error
	// DeleteItem removes the item's revisions and then the item.
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// Revision operations
	// PutRevision writes rev into its item's slot, replacing any revision
	// already in that state.
	PutRevision(ctx context.Context, rev *Revision) error
	// DeleteRevision empties a slot. Deleting an empty slot is not an error.
	DeleteRevision(ctx context.Context, itemID uuid.UUID, state RevisionState) error

	// FindBySlug returns an item of kind other than exclude whose revision in
	// one of states carries slug, or nil when there is none.
	FindBySlug(ctx context.Context, kind Kind, slug string, states []RevisionState, exclude uuid.UUID) (*Item, error)

	// ListItems returns up to q.Limit items matching q and the total number of
	// matching items irrespective of paging.
	ListItems(ctx context.Context, q Query) ([]*Item, int, error)

	// ListDuePending returns the ids of items of kind whose pending revision
	// has a publish time at or before now.
	ListDuePending(ctx context.Context, kind Kind, now time.Time) ([]uuid.UUID, error)
}

// Query is a compiled listing request handed to the repository.
type Query struct {
	Kind   Kind
	Where  Expr
	Sort   SortField
	Order  SortOrder
	Cursor *uuid.UUID
	Skip   int
	Limit  int
}

// EventSink defines the interface for lifecycle notifications. Sinks run
// after the transaction committed; their errors are logged and never fail
// the operation.
type EventSink interface {
	// ItemCreated is fired when an item is created or duplicated
	ItemCreated(ctx context.Context, item *Item) error

	// ItemUpdated is fired when an item's draft is rewritten
	ItemUpdated(ctx context.Context, item *Item) error

	// ItemPublished is fired when a draft becomes pending or published, and
	// when a due pending revision is promoted
	ItemPublished(ctx context.Context, item *Item) error

	// ItemUnpublished is fired when the live revision is moved back to draft
	ItemUnpublished(ctx context.Context, item *Item) error

	// ItemDeleted is fired with the last state of a deleted item
	ItemDeleted(ctx context.Context, item *Item) error
}

// Clock abstracts time retrieval so publish decisions are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }
