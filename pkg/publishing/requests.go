package publishing

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RevisionInput holds the editable fields of a revision.
type RevisionInput struct {
	Title       string          `json:"title" yaml:"title"`
	PreTitle    string          `json:"pre_title,omitempty" yaml:"pre_title"`
	Lead        string          `json:"lead,omitempty" yaml:"lead"`
	SEOTitle    string          `json:"seo_title,omitempty" yaml:"seo_title"`
	Description string          `json:"description,omitempty" yaml:"description"`
	Slug        string          `json:"slug" yaml:"slug"`
	Tags        []string        `json:"tags,omitempty" yaml:"tags"`
	AuthorIDs   []string        `json:"author_ids,omitempty" yaml:"author_ids"`
	Breaking    bool            `json:"breaking,omitempty" yaml:"breaking"`
	HideAuthor  bool            `json:"hide_author,omitempty" yaml:"hide_author"`
	ImageID     *uuid.UUID      `json:"image_id,omitempty" yaml:"image_id"`
	Properties  []Property      `json:"properties,omitempty" yaml:"properties"`
	Blocks      json.RawMessage `json:"blocks,omitempty" yaml:"-"`
}

// CreateRequest contains parameters for creating an item
type CreateRequest struct {
	Shared        bool `json:"shared" yaml:"shared"`
	RevisionInput `yaml:",inline"`
}

// UpdateRequest contains parameters for rewriting an item's draft
type UpdateRequest struct {
	Shared        bool `json:"shared" yaml:"shared"`
	RevisionInput `yaml:",inline"`
}

// PublishRequest contains the optional timestamps for a publish. A nil
// PublishAt means now.
type PublishRequest struct {
	PublishAt   *time.Time `json:"publish_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// ListRequest contains filter, ordering and paging for listings
type ListRequest struct {
	Filter Filter     `json:"filter"`
	Sort   SortField  `json:"sort,omitempty"`
	Order  SortOrder  `json:"order,omitempty"`
	Cursor *uuid.UUID `json:"cursor,omitempty"`
	Skip   int        `json:"skip,omitempty"`
	Take   int        `json:"take,omitempty"`
}

// LookupRequest identifies a single public item by exactly one of id or
// slug, or by a preview token.
type LookupRequest struct {
	ID    *uuid.UUID `json:"id,omitempty"`
	Slug  string     `json:"slug,omitempty"`
	Token string     `json:"token,omitempty"`
}

const (
	// DefaultTake is the page size used when ListRequest.Take is zero.
	DefaultTake = 10
	// MaxTake caps ListRequest.Take.
	MaxTake = 100
)
