// Package archive keeps JSON snapshots of items in a blob store. Every
// lifecycle event writes a history object and overwrites the item's latest
// snapshot, so deleted items can still be inspected and restored by hand.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

const contentType = "application/json"

// Event names recorded in snapshots.
const (
	EventCreated     = "created"
	EventUpdated     = "updated"
	EventPublished   = "published"
	EventUnpublished = "unpublished"
	EventDeleted     = "deleted"
)

// Snapshot is the archived form of an item at one lifecycle event.
type Snapshot struct {
	Event string           `json:"event"`
	At    time.Time        `json:"at"`
	Item  *publishing.Item `json:"item"`
}

// Sink is a publishing.EventSink writing snapshots to a BlobStore.
type Sink struct {
	store BlobStore
	clock publishing.Clock
}

var _ publishing.EventSink = (*Sink)(nil)

// NewSink creates an archive sink. A nil clock uses the real time.
func NewSink(store BlobStore, clock publishing.Clock) *Sink {
	if clock == nil {
		clock = publishing.RealClock{}
	}
	return &Sink{store: store, clock: clock}
}

func (s *Sink) ItemCreated(ctx context.Context, item *publishing.Item) error {
	return s.write(ctx, EventCreated, item)
}

func (s *Sink) ItemUpdated(ctx context.Context, item *publishing.Item) error {
	return s.write(ctx, EventUpdated, item)
}

func (s *Sink) ItemPublished(ctx context.Context, item *publishing.Item) error {
	return s.write(ctx, EventPublished, item)
}

func (s *Sink) ItemUnpublished(ctx context.Context, item *publishing.Item) error {
	return s.write(ctx, EventUnpublished, item)
}

func (s *Sink) ItemDeleted(ctx context.Context, item *publishing.Item) error {
	return s.write(ctx, EventDeleted, item)
}

// Latest reads the most recent snapshot of an item.
func (s *Sink) Latest(ctx context.Context, kind publishing.Kind, id uuid.UUID) (*Snapshot, error) {
	return s.read(ctx, LatestKey(kind, id))
}

// History reads every archived snapshot of an item, oldest first.
func (s *Sink) History(ctx context.Context, kind publishing.Kind, id uuid.UUID) ([]*Snapshot, error) {
	keys, err := s.store.List(ctx, historyPrefix(kind, id))
	if err != nil {
		return nil, fmt.Errorf("failed to list history of item %s: %w", id, err)
	}

	snapshots := make([]*Snapshot, 0, len(keys))
	for _, key := range keys {
		snapshot, err := s.read(ctx, key)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (s *Sink) read(ctx context.Context, key string) (*Snapshot, error) {
	r, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var snapshot Snapshot
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
	}
	return &snapshot, nil
}

func (s *Sink) write(ctx context.Context, event string, item *publishing.Item) error {
	snapshot := Snapshot{Event: event, At: s.clock.Now().UTC(), Item: item}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := s.store.Put(ctx, HistoryKey(item.Kind, item.ID, event, snapshot.At), bytes.NewReader(data), contentType); err != nil {
		return fmt.Errorf("failed to archive %s event of item %s: %w", event, item.ID, err)
	}
	if err := s.store.Put(ctx, LatestKey(item.Kind, item.ID), bytes.NewReader(data), contentType); err != nil {
		return fmt.Errorf("failed to archive latest snapshot of item %s: %w", item.ID, err)
	}
	return nil
}

// LatestKey is the object key of an item's most recent snapshot.
func LatestKey(kind publishing.Kind, id uuid.UUID) string {
	return fmt.Sprintf("%s/%s/latest.json", kind.Plural(), id)
}

// HistoryKey is the object key of a single event snapshot. Keys of one item
// sort chronologically.
func HistoryKey(kind publishing.Kind, id uuid.UUID, event string, at time.Time) string {
	return historyPrefix(kind, id) + at.UTC().Format("20060102T150405.000000000Z") + "-" + event + ".json"
}

func historyPrefix(kind publishing.Kind, id uuid.UUID) string {
	return fmt.Sprintf("%s/%s/history/", kind.Plural(), id)
}
