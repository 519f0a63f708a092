package publishing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	kind           Kind
	perms          kindPermissions
	repository     Repository
	eventSinks     []EventSink
	clock          Clock
	authorise      Authoriser
	preview        *PreviewSigner
	previewBaseURL string
	logger         *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithKind sets the content kind the service manages (default: article)
func WithKind(kind Kind) Option {
	return func(s *service) {
		s.kind = kind
	}
}

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithEventSink adds an event sink. Sinks are notified in the order added.
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		if sink != nil {
			s.eventSinks = append(s.eventSinks, sink)
		}
	}
}

// WithClock sets the clock used for timestamps and publish decisions
func WithClock(clock Clock) Option {
	return func(s *service) {
		s.clock = clock
	}
}

// WithAuthoriser replaces the default permission check
func WithAuthoriser(authorise Authoriser) Option {
	return func(s *service) {
		s.authorise = authorise
	}
}

// WithPreviewSigner enables preview links and token lookups
func WithPreviewSigner(signer *PreviewSigner) Option {
	return func(s *service) {
		s.preview = signer
	}
}

// WithPreviewBaseURL sets the website URL preview links point at
func WithPreviewBaseURL(baseURL string) Option {
	return func(s *service) {
		s.previewBaseURL = baseURL
	}
}

// WithLogger sets the logger (default: slog.Default())
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		kind:      KindArticle,
		clock:     RealClock{},
		authorise: Authorise,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if !s.kind.IsValid() {
		return nil, fmt.Errorf("unsupported kind %q", s.kind)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.perms = permissionsFor(s.kind)

	return s, nil
}

func (s *service) Kind() Kind {
	return s.kind
}

// Mutations

func (s *service) Create(ctx context.Context, session *Session, req CreateRequest) (*Item, error) {
	if err := s.check(session, s.perms.create); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	item := &Item{
		ID:         uuid.New(),
		Kind:       s.kind,
		Shared:     req.Shared,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	item.SetRevision(newDraft(req.RevisionInput, now))

	err := s.repository.WithTransaction(ctx, func(ctx context.Context) error {
		return s.repository.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, &ItemError{ItemID: item.ID, Op: "create", Err: err}
	}

	s.notify(ctx, "created", item, EventSink.ItemCreated)
	return item, nil
}

func (s *service) Update(ctx context.Context, session *Session, id uuid.UUID, req UpdateRequest) (*Item, error) {
	if err := s.check(session, s.perms.create); err != nil {
		return nil, err
	}

	var updated *Item
	err := s.repository.WithTransaction(ctx, func(ctx context.Context) error {
		item, err := s.load(ctx, id)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		item.Shared = req.Shared
		item.ModifiedAt = now
		if err := s.repository.UpdateItem(ctx, item); err != nil {
			return err
		}

		draft := planUpdate(item, req.RevisionInput, now)
		item.SetRevision(draft)
		if err := s.repository.PutRevision(ctx, draft); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, &ItemError{ItemID: id, Op: "update", Err: err}
	}

	s.notify(ctx, "updated", updated, EventSink.ItemUpdated)
	return updated, nil
}

func (s *service) Publish(ctx context.Context, session *Session, id uuid.UUID, req PublishRequest) (*Item, error) {
	if err := s.check(session, s.perms.publish); err != nil {
		return nil, err
	}

	var published *Item
	err := s.repository.WithTransaction(ctx, func(ctx context.Context) error {
		item, err := s.load(ctx, id)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		plan := planPublish(item, req, now)
		if plan == nil {
			return nil
		}

		clash, err := s.repository.FindBySlug(ctx, s.kind, plan.target.Slug,
			[]RevisionState{StatePending, StatePublished}, item.ID)
		if err != nil {
			return err
		}
		if err := checkPublishable(s.kind, plan.target.Slug, clash); err != nil {
			return err
		}

		if err := s.replaceRevisions(ctx, item, plan.target, plan.empty...); err != nil {
			return err
		}

		item.ModifiedAt = now
		if err := s.repository.UpdateItem(ctx, item); err != nil {
			return err
		}

		published = item
		return nil
	})
	if err != nil {
		return nil, &ItemError{ItemID: id, Op: "publish", Err: err}
	}
	if published == nil {
		return nil, nil
	}

	s.notify(ctx, "published", published, EventSink.ItemPublished)
	return published, nil
}

func (s *service) Unpublish(ctx context.Context, session *Session, id uuid.UUID) (*Item, error) {
	if err := s.check(session, s.perms.publish); err != nil {
		return nil, err
	}

	var unpublished *Item
	err := s.repository.WithTransaction(ctx, func(ctx context.Context) error {
		item, err := s.load(ctx, id)
		if err != nil {
			return err
		}

		draft, err := planUnpublish(item)
		if err != nil {
			return err
		}

		if err := s.replaceRevisions(ctx, item, draft, StatePending, StatePublished); err != nil {
			return err
		}

		item.ModifiedAt = s.clock.Now()
		if err := s.repository.UpdateItem(ctx, item); err != nil {
			return err
		}

		unpublished = item
		return nil
	})
	if err != nil {
		return nil, &ItemError{ItemID: id, Op: "unpublish", Err: err}
	}

	s.notify(ctx, "unpublished", unpublished, EventSink.ItemUnpublished)
	return unpublished, nil
}

func (s *service) Duplicate(ctx context.Context, session *Session, id uuid.UUID) (*Item, error) {
	if err := s.check(session, s.perms.create); err != nil {
		return nil, err
	}

	var duplicate *Item
	err := s.repository.WithTransaction(ctx, func(ctx context.Context) error {
		source, err := s.load(ctx, id)
		if err != nil {
			return err
		}

		dup, err := planDuplicate(source, s.clock.Now())
		if err != nil {
			return err
		}
		if err := s.repository.CreateItem(ctx, dup); err != nil {
			return err
		}

		duplicate = dup
		return nil
	})
	if err != nil {
		return nil, &ItemError{ItemID: id, Op: "duplicate", Err: err}
	}

	s.notify(ctx, "created", duplicate, EventSink.ItemCreated)
	return duplicate, nil
}

func (s *service) Delete(ctx context.Context, session *Session, id uuid.UUID) (*Item, error) {
	if err := s.check(session, s.perms.delete); err != nil {
		return nil, err
	}

	var deleted *Item
	err := s.repository.WithTransaction(ctx, func(ctx context.Context) error {
		item, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repository.DeleteItem(ctx, id); err != nil {
			return err
		}
		deleted = item
		return nil
	})
	if err != nil {
		return nil, &ItemError{ItemID: id, Op: "delete", Err: err}
	}

	s.notify(ctx, "deleted", deleted, EventSink.ItemDeleted)
	return deleted, nil
}

// PromoteDue runs each promotion in its own transaction so one failing item
// does not hold back the others.
func (s *service) PromoteDue(ctx context.Context) ([]*Item, error) {
	now := s.clock.Now()
	ids, err := s.repository.ListDuePending(ctx, s.kind, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due %s: %w", s.kind.Plural(), err)
	}

	var promoted []*Item
	var errs []error
	for _, id := range ids {
		var item *Item
		err := s.repository.WithTransaction(ctx, func(ctx context.Context) error {
			current, err := s.load(ctx, id)
			if err != nil {
				return err
			}
			rev := planPromote(current, now)
			if rev == nil {
				return nil
			}
			if err := s.replaceRevisions(ctx, current, rev, StatePending); err != nil {
				return err
			}
			current.ModifiedAt = now
			if err := s.repository.UpdateItem(ctx, current); err != nil {
				return err
			}
			item = current
			return nil
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to promote pending revision", "kind", s.kind, "id", id, "error", err)
			errs = append(errs, &ItemError{ItemID: id, Op: "promote", Err: err})
			continue
		}
		if item == nil {
			continue
		}

		s.notify(ctx, "published", item, EventSink.ItemPublished)
		promoted = append(promoted, item)
	}

	return promoted, errors.Join(errs...)
}

// Reads

func (s *service) Get(ctx context.Context, session *Session, id uuid.UUID) (*Item, error) {
	if session == nil {
		return nil, ErrNotAuthenticated
	}

	sharedOnly := false
	if err := s.authorise(s.perms.get, session.Roles); err != nil {
		if s.perms.getShared == "" || s.authorise(s.perms.getShared, session.Roles) != nil {
			return nil, err
		}
		sharedOnly = true
	}

	item, err := s.load(ctx, id)
	if err != nil {
		return nil, &ItemError{ItemID: id, Op: "get", Err: err}
	}
	if sharedOnly && !item.Shared {
		return nil, nil
	}
	return item, nil
}

func (s *service) List(ctx context.Context, session *Session, req ListRequest) (*ItemConnection, error) {
	if err := s.check(session, s.perms.get); err != nil {
		return nil, err
	}

	q, take, err := s.query(req, SortModifiedAt)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repository.ListItems(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.kind.Plural(), err)
	}

	nodes, info := paginate(items, take, req.Skip)
	return &ItemConnection{Nodes: nodes, TotalCount: total, PageInfo: info}, nil
}

func (s *service) ListPublished(ctx context.Context, req ListRequest) (*PublishedConnection, error) {
	published := true
	req.Filter.Published = &published

	q, take, err := s.query(req, SortPublishedAt)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repository.ListItems(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list published %s: %w", s.kind.Plural(), err)
	}

	nodes, info := paginate(items, take, req.Skip)
	views := make([]*PublishedItem, 0, len(nodes))
	for _, item := range nodes {
		views = append(views, publicView(item, item.Published()))
	}
	return &PublishedConnection{Nodes: views, TotalCount: total, PageInfo: info}, nil
}

func (s *service) GetPublished(ctx context.Context, req LookupRequest) (*PublishedItem, error) {
	if req.ID != nil && req.Slug != "" {
		return nil, userInput("you must provide either id or slug, not both")
	}

	switch {
	case req.ID != nil:
		item, err := s.load(ctx, *req.ID)
		if err != nil {
			return nil, err
		}
		if item.Published() == nil {
			return nil, ErrNotFound
		}
		return publicView(item, item.Published()), nil

	case req.Slug != "":
		item, err := s.repository.FindBySlug(ctx, s.kind, req.Slug, []RevisionState{StatePublished}, uuid.Nil)
		if err != nil {
			return nil, fmt.Errorf("failed to look up slug %q: %w", req.Slug, err)
		}
		if item == nil {
			return nil, ErrNotFound
		}
		return publicView(item, item.Published()), nil

	case req.Token != "":
		if s.preview == nil {
			return nil, ErrInvalidPreviewToken
		}
		id, err := s.preview.Verify(s.kind, req.Token)
		if err != nil {
			return nil, err
		}
		item, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		draft := item.Draft()
		if draft == nil {
			return nil, ErrNotFound
		}
		now := s.clock.Now()
		view := draft.Clone()
		view.UpdatedAt = &now
		view.PublishedAt = &now
		return publicView(item, view), nil

	default:
		return nil, userInput("you must provide id, slug or token")
	}
}

func (s *service) PreviewLink(ctx context.Context, session *Session, id uuid.UUID, ttl time.Duration) (string, error) {
	if err := s.check(session, s.perms.previewLink); err != nil {
		return "", err
	}
	if s.preview == nil {
		return "", errors.New("preview links are not configured")
	}
	if ttl <= 0 {
		return "", userInput("preview link lifetime must be positive")
	}

	item, err := s.load(ctx, id)
	if err != nil {
		return "", &ItemError{ItemID: id, Op: "preview_link", Err: err}
	}
	if item.Draft() == nil {
		return "", userInput("%s %s has no draft to preview", s.kind, id)
	}

	token, err := s.preview.Sign(s.kind, id, ttl)
	if err != nil {
		return "", err
	}

	link, err := url.Parse(s.previewBaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid preview base url: %w", err)
	}
	link = link.JoinPath(s.kind.Plural(), "preview")
	query := link.Query()
	query.Set("token", token)
	link.RawQuery = query.Encode()
	return link.String(), nil
}

// Helpers

func (s *service) check(session *Session, perm Permission) error {
	if session == nil {
		return ErrNotAuthenticated
	}
	return s.authorise(perm, session.Roles)
}

// load fetches an item and hides items of the other kind.
func (s *service) load(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := s.repository.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Kind != s.kind {
		return nil, ErrNotFound
	}
	return item, nil
}

// replaceRevisions empties the given slots and writes rev into its own.
func (s *service) replaceRevisions(ctx context.Context, item *Item, rev *Revision, empty ...RevisionState) error {
	for _, state := range empty {
		if err := s.repository.DeleteRevision(ctx, item.ID, state); err != nil {
			return err
		}
		item.ClearRevision(state)
	}
	item.SetRevision(rev)
	return s.repository.PutRevision(ctx, rev)
}

// query validates paging and ordering and compiles the filter.
func (s *service) query(req ListRequest, defaultSort SortField) (Query, int, error) {
	sort := req.Sort
	if sort == "" {
		sort = defaultSort
	}
	if !sort.IsValid() {
		return Query{}, 0, userInput("unknown sort field %q", req.Sort)
	}

	order := req.Order
	if order == "" {
		order = SortDescending
	}
	if !order.IsValid() {
		return Query{}, 0, userInput("unknown sort order %q", req.Order)
	}

	if req.Skip < 0 {
		return Query{}, 0, userInput("skip must not be negative")
	}

	take := req.Take
	switch {
	case take < 0:
		return Query{}, 0, userInput("take must not be negative")
	case take == 0:
		take = DefaultTake
	case take > MaxTake:
		take = MaxTake
	}

	return Query{
		Kind:   s.kind,
		Where:  req.Filter.Expr(),
		Sort:   sort,
		Order:  order,
		Cursor: req.Cursor,
		Skip:   req.Skip,
		Limit:  take + 1,
	}, take, nil
}

// paginate trims the look-ahead row and derives the page info.
func paginate(items []*Item, take, skip int) ([]*Item, PageInfo) {
	info := PageInfo{
		HasPreviousPage: skip > 0,
		HasNextPage:     len(items) > take,
	}
	if len(items) > take {
		items = items[:take]
	}
	if len(items) > 0 {
		first, last := items[0].ID, items[len(items)-1].ID
		info.StartCursor = &first
		info.EndCursor = &last
	}
	return items, info
}

func publicView(item *Item, rev *Revision) *PublishedItem {
	view := rev.Clone()
	view.Properties = rev.PublicProperties()
	return &PublishedItem{
		ID:       item.ID,
		Kind:     item.Kind,
		Shared:   item.Shared,
		Revision: view,
	}
}

// notify fans an event out to every sink, logging failures.
func (s *service) notify(ctx context.Context, event string, item *Item, fire func(EventSink, context.Context, *Item) error) {
	for _, sink := range s.eventSinks {
		if err := fire(sink, ctx, item); err != nil {
			s.logger.ErrorContext(ctx, "Event sink failed", "event", event, "kind", s.kind, "id", item.ID, "error", err)
		}
	}
}
