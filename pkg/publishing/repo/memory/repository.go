package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

type txKey struct{}

// Repository implements publishing.Repository using in-memory storage.
// Transactions are serialized and roll back by restoring a snapshot.
type Repository struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	items map[uuid.UUID]*publishing.Item
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		items: make(map[uuid.UUID]*publishing.Item),
	}
}

var _ publishing.Repository = (*Repository)(nil)

func (r *Repository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == r {
		return fn(ctx)
	}

	r.txMu.Lock()
	defer r.txMu.Unlock()

	snapshot := r.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, r)); err != nil {
		r.mu.Lock()
		r.items = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *Repository) snapshot() map[uuid.UUID]*publishing.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	copied := make(map[uuid.UUID]*publishing.Item, len(r.items))
	for id, item := range r.items {
		copied[id] = item.Clone()
	}
	return copied
}

// Item operations

func (r *Repository) CreateItem(ctx context.Context, item *publishing.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("item %s already exists", item.ID)
	}
	r.items[item.ID] = item.Clone()
	return nil
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*publishing.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, publishing.ErrNotFound
	}
	return item.Clone(), nil
}

// UpdateItem writes the item's own columns; revisions are left untouched.
func (r *Repository) UpdateItem(ctx context.Context, item *publishing.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.items[item.ID]
	if !exists {
		return publishing.ErrNotFound
	}
	stored.Shared = item.Shared
	stored.ModifiedAt = item.ModifiedAt
	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return publishing.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// Revision operations

func (r *Repository) PutRevision(ctx context.Context, rev *publishing.Revision) error {
	if !rev.State.IsValid() {
		return fmt.Errorf("invalid revision state %q", rev.State)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.items[rev.ItemID]
	if !exists {
		return publishing.ErrNotFound
	}
	stored.SetRevision(rev.Clone())
	return nil
}

func (r *Repository) DeleteRevision(ctx context.Context, itemID uuid.UUID, state publishing.RevisionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.items[itemID]
	if !exists {
		return publishing.ErrNotFound
	}
	stored.ClearRevision(state)
	return nil
}

// Queries

func (r *Repository) FindBySlug(ctx context.Context, kind publishing.Kind, slug string, states []publishing.RevisionState, exclude uuid.UUID) (*publishing.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *publishing.Item
	for _, item := range r.items {
		if item.Kind != kind || item.ID == exclude {
			continue
		}
		for _, state := range states {
			rev := item.Revision(state)
			if rev == nil || rev.Slug != slug {
				continue
			}
			// Pick the oldest match so results do not depend on map order.
			if found == nil || item.CreatedAt.Before(found.CreatedAt) ||
				(item.CreatedAt.Equal(found.CreatedAt) && bytes.Compare(item.ID[:], found.ID[:]) < 0) {
				found = item
			}
			break
		}
	}
	return found.Clone(), nil
}

func (r *Repository) ListItems(ctx context.Context, q publishing.Query) ([]*publishing.Item, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*publishing.Item
	for _, item := range r.items {
		if item.Kind != q.Kind {
			continue
		}
		ok, err := publishing.Match(q.Where, item)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			matched = append(matched, item)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return publishing.Less(matched[i], matched[j], q.Sort, q.Order)
	})

	total := len(matched)
	page := matched

	if q.Cursor != nil {
		start := -1
		for i, item := range page {
			if item.ID == *q.Cursor {
				start = i
				break
			}
		}
		if start < 0 {
			return []*publishing.Item{}, total, nil
		}
		page = page[start:]
	}

	if q.Skip >= len(page) {
		page = nil
	} else {
		page = page[q.Skip:]
	}
	if q.Limit > 0 && len(page) > q.Limit {
		page = page[:q.Limit]
	}

	result := make([]*publishing.Item, 0, len(page))
	for _, item := range page {
		result = append(result, item.Clone())
	}
	return result, total, nil
}

func (r *Repository) ListDuePending(ctx context.Context, kind publishing.Kind, now time.Time) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type due struct {
		id uuid.UUID
		at time.Time
	}
	var dues []due
	for _, item := range r.items {
		if item.Kind != kind {
			continue
		}
		pending := item.Pending()
		if pending == nil || pending.PublishAt == nil || pending.PublishAt.After(now) {
			continue
		}
		dues = append(dues, due{id: item.ID, at: *pending.PublishAt})
	}

	sort.Slice(dues, func(i, j int) bool {
		return dues[i].at.Before(dues[j].at)
	})

	ids := make([]uuid.UUID, 0, len(dues))
	for _, d := range dues {
		ids = append(ids, d.id)
	}
	return ids, nil
}
