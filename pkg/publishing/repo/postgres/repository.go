package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Begin(context.Context) (pgx.Tx, error)
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type ctxKey string

const txKey ctxKey = "tx"

// Repository implements publishing.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

var _ publishing.Repository = (*Repository)(nil)

// WithTransaction begins a transaction and stores it in the context handed
// to fn. Repository calls made with that context run inside it.
func (r *Repository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("begin transaction", err)
	}

	txCtx := context.WithValue(ctx, txKey, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("commit transaction", err)
	}
	return nil
}

func (r *Repository) conn(ctx context.Context) DBTX {
	if tx, ok := ctx.Value(txKey).(pgx.Tx); ok {
		return tx
	}
	return r.db
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "items") {
				return fmt.Errorf("item already exists")
			}
			if strings.Contains(pgErr.ConstraintName, "revisions") {
				return fmt.Errorf("revision already exists")
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return publishing.ErrNotFound
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("invalid value for %s", pgErr.ConstraintName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return publishing.ErrNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Item operations

func (r *Repository) CreateItem(ctx context.Context, item *publishing.Item) error {
	return r.WithTransaction(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO items (id, kind, shared, created_at, modified_at)
			VALUES ($1, $2, $3, $4, $5)`

		_, err := r.conn(ctx).Exec(ctx, query,
			item.ID, string(item.Kind), item.Shared, item.CreatedAt, item.ModifiedAt)
		if err != nil {
			return r.handlePostgresError("create item", err)
		}

		for _, rev := range item.Revisions() {
			if err := r.PutRevision(ctx, rev); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*publishing.Item, error) {
	query := `SELECT id, kind, shared, created_at, modified_at FROM items WHERE id = $1`

	item, err := scanItem(r.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.handlePostgresError("get item", err)
	}

	if err := r.loadRevisions(ctx, []*publishing.Item{item}); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem writes the item's own columns; revisions are left untouched.
func (r *Repository) UpdateItem(ctx context.Context, item *publishing.Item) error {
	query := `UPDATE items SET shared = $2, modified_at = $3 WHERE id = $1`

	tag, err := r.conn(ctx).Exec(ctx, query, item.ID, item.Shared, item.ModifiedAt)
	if err != nil {
		return r.handlePostgresError("update item", err)
	}
	if tag.RowsAffected() == 0 {
		return publishing.ErrNotFound
	}
	return nil
}

// DeleteItem removes the item; its revisions go with it through the
// foreign key cascade.
func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return publishing.ErrNotFound
	}
	return nil
}

// Revision operations

func (r *Repository) PutRevision(ctx context.Context, rev *publishing.Revision) error {
	if !rev.State.IsValid() {
		return fmt.Errorf("invalid revision state %q", rev.State)
	}

	properties, err := json.Marshal(nonNilProperties(rev.Properties))
	if err != nil {
		return fmt.Errorf("failed to encode properties: %w", err)
	}
	var blocks []byte
	if len(rev.Blocks) > 0 {
		blocks = rev.Blocks
	}

	query := `
		INSERT INTO revisions (
			id, item_id, state, revision, title, pre_title, lead, seo_title,
			description, slug, tags, author_ids, breaking, hide_author, image_id,
			properties, blocks, created_at, updated_at, publish_at, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21)
		ON CONFLICT (item_id, state) DO UPDATE SET
			id = EXCLUDED.id,
			revision = EXCLUDED.revision,
			title = EXCLUDED.title,
			pre_title = EXCLUDED.pre_title,
			lead = EXCLUDED.lead,
			seo_title = EXCLUDED.seo_title,
			description = EXCLUDED.description,
			slug = EXCLUDED.slug,
			tags = EXCLUDED.tags,
			author_ids = EXCLUDED.author_ids,
			breaking = EXCLUDED.breaking,
			hide_author = EXCLUDED.hide_author,
			image_id = EXCLUDED.image_id,
			properties = EXCLUDED.properties,
			blocks = EXCLUDED.blocks,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			publish_at = EXCLUDED.publish_at,
			published_at = EXCLUDED.published_at`

	_, err = r.conn(ctx).Exec(ctx, query,
		rev.ID, rev.ItemID, string(rev.State), rev.Revision, rev.Title, rev.PreTitle,
		rev.Lead, rev.SEOTitle, rev.Description, rev.Slug, nonNil(rev.Tags),
		nonNil(rev.AuthorIDs), rev.Breaking, rev.HideAuthor, rev.ImageID,
		properties, blocks, rev.CreatedAt, rev.UpdatedAt, rev.PublishAt, rev.PublishedAt)
	if err != nil {
		return r.handlePostgresError("put revision", err)
	}
	return nil
}

func (r *Repository) DeleteRevision(ctx context.Context, itemID uuid.UUID, state publishing.RevisionState) error {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, itemID).Scan(&exists)
	if err != nil {
		return r.handlePostgresError("delete revision", err)
	}
	if !exists {
		return publishing.ErrNotFound
	}

	_, err = r.conn(ctx).Exec(ctx, `DELETE FROM revisions WHERE item_id = $1 AND state = $2`, itemID, string(state))
	if err != nil {
		return r.handlePostgresError("delete revision", err)
	}
	return nil
}

// Queries

func (r *Repository) FindBySlug(ctx context.Context, kind publishing.Kind, slug string, states []publishing.RevisionState, exclude uuid.UUID) (*publishing.Item, error) {
	query := `
		SELECT i.id FROM items i
		JOIN revisions r ON r.item_id = i.id
		WHERE i.kind = $1 AND r.slug = $2 AND r.state = ANY($3) AND i.id <> $4
		ORDER BY i.created_at, i.id
		LIMIT 1`

	var id uuid.UUID
	err := r.conn(ctx).QueryRow(ctx, query, string(kind), slug, stateNames(states), exclude).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, r.handlePostgresError("find by slug", err)
	}
	return r.GetItem(ctx, id)
}

func (r *Repository) ListItems(ctx context.Context, q publishing.Query) ([]*publishing.Item, int, error) {
	b := &builder{}
	kindArg := b.arg(string(q.Kind))
	where, err := b.compile(q.Where)
	if err != nil {
		return nil, 0, err
	}
	orderBy, err := orderClause(q.Sort, q.Order)
	if err != nil {
		return nil, 0, err
	}

	from := fmt.Sprintf(`
		FROM items i
		LEFT JOIN revisions pub ON pub.item_id = i.id AND pub.state = 'published'
		LEFT JOIN revisions pen ON pen.item_id = i.id AND pen.state = 'pending'
		WHERE i.kind = %s AND %s`, kindArg, where)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT count(*)"+from, b.args...).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count items", err)
	}

	query := fmt.Sprintf(`
		WITH matched AS (
			SELECT i.id, i.kind, i.shared, i.created_at, i.modified_at,
				row_number() OVER (ORDER BY %s) AS pos
			%s
		)
		SELECT id, kind, shared, created_at, modified_at FROM matched`, orderBy, from)

	if q.Cursor != nil {
		query += fmt.Sprintf(` WHERE pos >= (SELECT pos FROM matched WHERE id = %s)`, b.arg(*q.Cursor))
	}
	query += fmt.Sprintf(` ORDER BY pos OFFSET %s`, b.arg(q.Skip))
	if q.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %s`, b.arg(q.Limit))
	}

	rows, err := r.conn(ctx).Query(ctx, query, b.args...)
	if err != nil {
		return nil, 0, r.handlePostgresError("list items", err)
	}
	defer rows.Close()

	items := []*publishing.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, r.handlePostgresError("list items", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.handlePostgresError("list items", err)
	}

	if err := r.loadRevisions(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) ListDuePending(ctx context.Context, kind publishing.Kind, now time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT i.id FROM items i
		JOIN revisions r ON r.item_id = i.id AND r.state = 'pending'
		WHERE i.kind = $1 AND r.publish_at <= $2
		ORDER BY r.publish_at, i.id`

	rows, err := r.conn(ctx).Query(ctx, query, string(kind), now)
	if err != nil {
		return nil, r.handlePostgresError("list due pending", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, r.handlePostgresError("list due pending", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list due pending", err)
	}
	return ids, nil
}

// loadRevisions fills the revision slots of items with one query.
func (r *Repository) loadRevisions(ctx context.Context, items []*publishing.Item) error {
	if len(items) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*publishing.Item, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		byID[item.ID] = item
		ids = append(ids, item.ID)
	}

	query := `
		SELECT id, item_id, state, revision, title, pre_title, lead, seo_title,
			description, slug, tags, author_ids, breaking, hide_author, image_id,
			properties, blocks, created_at, updated_at, publish_at, published_at
		FROM revisions WHERE item_id = ANY($1)`

	rows, err := r.conn(ctx).Query(ctx, query, ids)
	if err != nil {
		return r.handlePostgresError("load revisions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rev        publishing.Revision
			state      string
			properties []byte
			blocks     []byte
		)
		err := rows.Scan(
			&rev.ID, &rev.ItemID, &state, &rev.Revision, &rev.Title, &rev.PreTitle,
			&rev.Lead, &rev.SEOTitle, &rev.Description, &rev.Slug, &rev.Tags,
			&rev.AuthorIDs, &rev.Breaking, &rev.HideAuthor, &rev.ImageID,
			&properties, &blocks, &rev.CreatedAt, &rev.UpdatedAt, &rev.PublishAt, &rev.PublishedAt)
		if err != nil {
			return r.handlePostgresError("load revisions", err)
		}

		rev.State = publishing.RevisionState(state)
		if err := json.Unmarshal(properties, &rev.Properties); err != nil {
			return fmt.Errorf("failed to decode properties of revision %s: %w", rev.ID, err)
		}
		if len(blocks) > 0 {
			rev.Blocks = json.RawMessage(blocks)
		}

		if item, ok := byID[rev.ItemID]; ok {
			item.SetRevision(&rev)
		}
	}
	if err := rows.Err(); err != nil {
		return r.handlePostgresError("load revisions", err)
	}
	return nil
}

func scanItem(row pgx.Row) (*publishing.Item, error) {
	var (
		item publishing.Item
		kind string
	)
	if err := row.Scan(&item.ID, &kind, &item.Shared, &item.CreatedAt, &item.ModifiedAt); err != nil {
		return nil, err
	}
	item.Kind = publishing.Kind(kind)
	return &item, nil
}

func stateNames(states []publishing.RevisionState) []string {
	names := make([]string, 0, len(states))
	for _, state := range states {
		names = append(names, string(state))
	}
	return names
}

// nonNil keeps nil slices away from NOT NULL array columns.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilProperties(p []publishing.Property) []publishing.Property {
	if p == nil {
		return []publishing.Property{}
	}
	return p
}
