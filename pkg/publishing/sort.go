package publishing

import (
	"bytes"
	"time"
)

// SortField selects the timestamp a listing is ordered by.
type SortField string

const (
	SortCreatedAt   SortField = "created_at"
	SortModifiedAt  SortField = "modified_at"
	SortPublishedAt SortField = "published_at"
	SortUpdatedAt   SortField = "updated_at"
	SortPublishAt   SortField = "publish_at"
)

// IsValid reports whether the sort field is known.
func (f SortField) IsValid() bool {
	switch f {
	case SortCreatedAt, SortModifiedAt, SortPublishedAt, SortUpdatedAt, SortPublishAt:
		return true
	default:
		return false
	}
}

// SortOrder is the direction of a listing.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// IsValid reports whether the order is known.
func (o SortOrder) IsValid() bool {
	return o == SortAscending || o == SortDescending
}

// SortValue returns the timestamp field sorts by for item. PublishedAt and
// UpdatedAt read the published revision; PublishAt reads the pending one.
func SortValue(item *Item, field SortField) *time.Time {
	switch field {
	case SortCreatedAt:
		return &item.CreatedAt
	case SortModifiedAt:
		return &item.ModifiedAt
	case SortPublishedAt:
		if rev := item.Published(); rev != nil {
			return rev.PublishedAt
		}
	case SortUpdatedAt:
		if rev := item.Published(); rev != nil {
			return rev.UpdatedAt
		}
	case SortPublishAt:
		if rev := item.Pending(); rev != nil {
			return rev.PublishAt
		}
	}
	return nil
}

// Less orders a before b. Missing values sort last ascending and first
// descending; ties are broken by id in the same direction.
func Less(a, b *Item, field SortField, order SortOrder) bool {
	va, vb := SortValue(a, field), SortValue(b, field)
	desc := order == SortDescending

	switch {
	case va == nil && vb == nil:
	case va == nil:
		return desc
	case vb == nil:
		return !desc
	case !va.Equal(*vb):
		if desc {
			return va.After(*vb)
		}
		return va.Before(*vb)
	}

	cmp := bytes.Compare(a.ID[:], b.ID[:])
	if desc {
		return cmp > 0
	}
	return cmp < 0
}
