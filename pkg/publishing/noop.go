package publishing

import (
	"context"
	"log/slog"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) ItemCreated(ctx context.Context, item *Item) error     { return nil }
func (n *NoopEventSink) ItemUpdated(ctx context.Context, item *Item) error     { return nil }
func (n *NoopEventSink) ItemPublished(ctx context.Context, item *Item) error   { return nil }
func (n *NoopEventSink) ItemUnpublished(ctx context.Context, item *Item) error { return nil }
func (n *NoopEventSink) ItemDeleted(ctx context.Context, item *Item) error     { return nil }

// LoggingEventSink is an event sink that logs events but takes no other action
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates a new logging event sink. A nil logger uses
// slog.Default().
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

func (l *LoggingEventSink) ItemCreated(ctx context.Context, item *Item) error {
	l.log(ctx, "Item created", item)
	return nil
}

func (l *LoggingEventSink) ItemUpdated(ctx context.Context, item *Item) error {
	l.log(ctx, "Item updated", item)
	return nil
}

func (l *LoggingEventSink) ItemPublished(ctx context.Context, item *Item) error {
	l.log(ctx, "Item published", item)
	return nil
}

func (l *LoggingEventSink) ItemUnpublished(ctx context.Context, item *Item) error {
	l.log(ctx, "Item unpublished", item)
	return nil
}

func (l *LoggingEventSink) ItemDeleted(ctx context.Context, item *Item) error {
	l.log(ctx, "Item deleted", item)
	return nil
}

func (l *LoggingEventSink) log(ctx context.Context, msg string, item *Item) {
	attrs := []any{"id", item.ID, "kind", item.Kind}
	if rev := item.Latest(); rev != nil {
		attrs = append(attrs, "state", rev.State, "revision", rev.Revision, "slug", rev.Slug)
	}
	l.logger.InfoContext(ctx, msg, attrs...)
}
