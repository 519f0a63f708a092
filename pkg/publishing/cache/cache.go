// Package cache keeps public lookups of published items in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

const (
	DefaultTTL       = 5 * time.Minute
	DefaultKeyPrefix = "wepublish:"
)

// Client is the part of *redis.Client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// Cache stores published items by id and maps slugs to ids. It is also a
// publishing.EventSink: publish, unpublish and delete events drop the
// item's entry. Slug entries are checked against the cached item on read,
// so a slug that moved never serves the old item.
//
// Every invalidation bumps a generation counter shared by the kind. A lookup
// that missed the cache drops its own write when the generation moved while
// it read the store, so a racing publish never leaves the older view behind.
type Cache struct {
	client Client
	kind   publishing.Kind
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures a Cache
type Option func(*Cache)

// WithTTL sets the lifetime of cache entries
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithKeyPrefix sets the prefix of every cache key
func WithKeyPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// WithLogger sets the logger cache failures are reported to
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a cache for items of kind.
func New(client Client, kind publishing.Kind, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		kind:   kind,
		prefix: DefaultKeyPrefix,
		ttl:    DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ publishing.EventSink = (*Cache)(nil)

func (c *Cache) idKey(id uuid.UUID) string {
	return fmt.Sprintf("%s%s:published:id:%s", c.prefix, c.kind, id)
}

func (c *Cache) slugKey(slug string) string {
	return fmt.Sprintf("%s%s:published:slug:%s", c.prefix, c.kind, slug)
}

func (c *Cache) genKey() string {
	return fmt.Sprintf("%s%s:published:gen", c.prefix, c.kind)
}

// generation returns the invalidation counter, 0 before the first
// invalidation.
func (c *Cache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get returns the cached item, or nil on a miss.
func (c *Cache) Get(ctx context.Context, id uuid.UUID) (*publishing.PublishedItem, error) {
	data, err := c.client.Get(ctx, c.idKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var item publishing.PublishedItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to decode cached item %s: %w", id, err)
	}
	return &item, nil
}

// GetBySlug returns the cached item published under slug, or nil on a miss.
func (c *Cache) GetBySlug(ctx context.Context, slug string) (*publishing.PublishedItem, error) {
	raw, err := c.client.Get(ctx, c.slugKey(slug)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, nil
	}
	item, err := c.Get(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	if item.Revision == nil || item.Revision.Slug != slug {
		return nil, nil
	}
	return item, nil
}

// Put stores item under its id and its slug.
func (c *Cache) Put(ctx context.Context, item *publishing.PublishedItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode item %s: %w", item.ID, err)
	}
	if err := c.client.Set(ctx, c.idKey(item.ID), data, c.ttl).Err(); err != nil {
		return err
	}
	if item.Revision != nil && item.Revision.Slug != "" {
		return c.client.Set(ctx, c.slugKey(item.Revision.Slug), item.ID.String(), c.ttl).Err()
	}
	return nil
}

// Invalidate drops the cached item. The generation is bumped before the
// entry is deleted.
func (c *Cache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Incr(ctx, c.genKey()).Err(); err != nil {
		return err
	}
	return c.client.Del(ctx, c.idKey(id)).Err()
}

// putFresh stores item unless an invalidation happened after gen was read.
func (c *Cache) putFresh(ctx context.Context, item *publishing.PublishedItem, gen int64) error {
	if err := c.Put(ctx, item); err != nil {
		return err
	}
	now, err := c.generation(ctx)
	if err != nil || now != gen {
		if delErr := c.client.Del(ctx, c.idKey(item.ID)).Err(); delErr != nil {
			return delErr
		}
	}
	return err
}

func (c *Cache) ItemCreated(ctx context.Context, item *publishing.Item) error {
	return nil
}

func (c *Cache) ItemUpdated(ctx context.Context, item *publishing.Item) error {
	return nil
}

func (c *Cache) ItemPublished(ctx context.Context, item *publishing.Item) error {
	return c.Invalidate(ctx, item.ID)
}

func (c *Cache) ItemUnpublished(ctx context.Context, item *publishing.Item) error {
	return c.Invalidate(ctx, item.ID)
}

func (c *Cache) ItemDeleted(ctx context.Context, item *publishing.Item) error {
	return c.Invalidate(ctx, item.ID)
}

// Wrap returns svc with GetPublished served from the cache. Preview token
// lookups always reach svc. Cache failures are logged and fall through.
func (c *Cache) Wrap(svc publishing.Service) publishing.Service {
	return &cachedService{Service: svc, cache: c}
}

type cachedService struct {
	publishing.Service
	cache *Cache
}

func (s *cachedService) GetPublished(ctx context.Context, req publishing.LookupRequest) (*publishing.PublishedItem, error) {
	if req.Token != "" || (req.ID != nil) == (req.Slug != "") {
		return s.Service.GetPublished(ctx, req)
	}

	var (
		cached *publishing.PublishedItem
		err    error
	)
	if req.ID != nil {
		cached, err = s.cache.Get(ctx, *req.ID)
	} else {
		cached, err = s.cache.GetBySlug(ctx, req.Slug)
	}
	if err != nil {
		s.cache.logger.WarnContext(ctx, "published cache read failed", "kind", s.cache.kind, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	gen, genErr := s.cache.generation(ctx)
	item, err := s.Service.GetPublished(ctx, req)
	if err != nil || item == nil {
		return item, err
	}
	if genErr != nil {
		return item, nil
	}
	if err := s.cache.putFresh(ctx, item, gen); err != nil {
		s.cache.logger.WarnContext(ctx, "published cache write failed", "kind", s.cache.kind, "id", item.ID, "error", err)
	}
	return item, nil
}
