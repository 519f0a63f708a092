package publishing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service is the main interface for managing articles or pages. A service
// instance is bound to a single Kind.
//
// Operations taking a *Session require an authenticated caller with the
// permission for the service's kind and fail with ErrNotAuthenticated or
// ErrNotAuthorised otherwise.
type Service interface {
	// Kind returns the content kind the service manages.
	Kind() Kind

	// Create creates an item whose only revision is draft revision 0.
	Create(ctx context.Context, session *Session, req CreateRequest) (*Item, error)

	// Update rewrites the draft. The draft's revision becomes one past the
	// highest pending or published revision.
	Update(ctx context.Context, session *Session, id uuid.UUID, req UpdateRequest) (*Item, error)

	// Publish moves the draft to pending or published depending on the
	// publish time. It returns (nil, nil) when the item has no draft.
	Publish(ctx context.Context, session *Session, id uuid.UUID, req PublishRequest) (*Item, error)

	// Unpublish moves pending ?? published back to the draft.
	Unpublish(ctx context.Context, session *Session, id uuid.UUID) (*Item, error)

	// Duplicate creates a new item whose draft copies the source's latest
	// revision without its slug.
	Duplicate(ctx context.Context, session *Session, id uuid.UUID) (*Item, error)

	// Delete removes the item with all its revisions and returns its last state.
	Delete(ctx context.Context, session *Session, id uuid.UUID) (*Item, error)

	// Get returns a single item. Callers limited to shared items receive nil
	// for items that are not shared.
	Get(ctx context.Context, session *Session, id uuid.UUID) (*Item, error)

	// List returns a filtered, sorted page of items.
	List(ctx context.Context, session *Session, req ListRequest) (*ItemConnection, error)

	// ListPublished returns a page of published items. It needs no session.
	ListPublished(ctx context.Context, req ListRequest) (*PublishedConnection, error)

	// GetPublished looks up a single public item by id, slug or preview token.
	GetPublished(ctx context.Context, req LookupRequest) (*PublishedItem, error)

	// PreviewLink returns a link granting temporary public access to the draft.
	PreviewLink(ctx context.Context, session *Session, id uuid.UUID, ttl time.Duration) (string, error)

	// PromoteDue publishes every pending revision whose publish time has
	// passed and returns the promoted items.
	PromoteDue(ctx context.Context) ([]*Item, error)
}
