package postgres

import (
	"fmt"
	"strings"

	"github.com/wepublish/wepublish-api/pkg/publishing"
)

var (
	textColumns = map[publishing.Field]string{
		publishing.FieldTitle: "title",
		publishing.FieldSlug:  "slug",
	}
	listColumns = map[publishing.Field]string{
		publishing.FieldTags:    "tags",
		publishing.FieldAuthors: "author_ids",
	}
	sortColumns = map[publishing.SortField]string{
		publishing.SortCreatedAt:   "i.created_at",
		publishing.SortModifiedAt:  "i.modified_at",
		publishing.SortPublishedAt: "pub.published_at",
		publishing.SortUpdatedAt:   "pub.updated_at",
		publishing.SortPublishAt:   "pen.publish_at",
	}
)

// builder compiles filter expressions to SQL over the items table aliased
// as i, collecting positional arguments as it goes.
type builder struct {
	args []interface{}
}

func (b *builder) arg(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) compile(expr publishing.Expr) (string, error) {
	switch e := expr.(type) {
	case nil:
		return "TRUE", nil
	case publishing.And:
		return b.join(e, " AND ", "TRUE")
	case publishing.Or:
		return b.join(e, " OR ", "FALSE")
	case publishing.Exists:
		clause := b.revisionExists(e.State, "")
		if !e.Want {
			clause = "NOT " + clause
		}
		return clause, nil
	case publishing.Equals:
		return b.equals(e)
	case publishing.Contains:
		column, ok := textColumns[e.Field]
		if !ok {
			return "", fmt.Errorf("field %q is not a text field", e.Field)
		}
		cond := fmt.Sprintf("strpos(lower(r.%s), lower(%s)) > 0", column, b.arg(e.Value))
		return b.revisionExists(e.State, cond), nil
	case publishing.HasAll:
		column, ok := listColumns[e.Field]
		if !ok {
			return "", fmt.Errorf("field %q is not a list field", e.Field)
		}
		cond := fmt.Sprintf("r.%s @> %s::text[]", column, b.arg(nonNil(e.Values)))
		return b.revisionExists(e.State, cond), nil
	default:
		return "", fmt.Errorf("unsupported filter expression %T", expr)
	}
}

func (b *builder) join(children []publishing.Expr, sep, empty string) (string, error) {
	if len(children) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(children))
	for _, child := range children {
		part, err := b.compile(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *builder) equals(e publishing.Equals) (string, error) {
	if e.State == "" {
		if e.Field != publishing.FieldShared {
			return "", fmt.Errorf("unsupported item field %q", e.Field)
		}
		want, ok := e.Value.(bool)
		if !ok {
			return "", fmt.Errorf("field %q expects a bool, got %T", e.Field, e.Value)
		}
		return "i.shared = " + b.arg(want), nil
	}

	column, ok := textColumns[e.Field]
	if !ok {
		return "", fmt.Errorf("field %q is not a text field", e.Field)
	}
	want, ok := e.Value.(string)
	if !ok {
		return "", fmt.Errorf("field %q expects a string, got %T", e.Field, e.Value)
	}
	return b.revisionExists(e.State, fmt.Sprintf("r.%s = %s", column, b.arg(want))), nil
}

func (b *builder) revisionExists(state publishing.RevisionState, cond string) string {
	clause := "EXISTS (SELECT 1 FROM revisions r WHERE r.item_id = i.id AND r.state = " + b.arg(string(state))
	if cond != "" {
		clause += " AND " + cond
	}
	return clause + ")"
}

// orderClause orders missing values last ascending and first descending,
// breaking ties by id in the same direction.
func orderClause(field publishing.SortField, order publishing.SortOrder) (string, error) {
	column, ok := sortColumns[field]
	if !ok {
		return "", fmt.Errorf("unsupported sort field %q", field)
	}
	switch order {
	case publishing.SortAscending:
		return column + " ASC NULLS LAST, i.id ASC", nil
	case publishing.SortDescending:
		return column + " DESC NULLS FIRST, i.id DESC", nil
	default:
		return "", fmt.Errorf("unsupported sort order %q", order)
	}
}
