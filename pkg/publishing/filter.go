package publishing

import (
	"fmt"
	"strings"
)

// Field names a filterable attribute. Revision fields are addressed together
// with a RevisionState; item fields take an empty state.
type Field string

const (
	FieldTitle   Field = "title"
	FieldSlug    Field = "slug"
	FieldTags    Field = "tags"
	FieldAuthors Field = "author_ids"
	FieldShared  Field = "shared"
)

// Expr is a node of a filter expression tree. Repositories either evaluate
// the tree directly (Match) or compile it to their query language.
type Expr interface {
	expr()
}

// And matches when every child matches. An empty And matches everything.
type And []Expr

// Or matches when any child matches. An empty Or matches nothing.
type Or []Expr

// Exists matches when the revision slot is occupied (Want) or empty (!Want).
type Exists struct {
	State RevisionState
	Want  bool
}

// Equals matches a field against a scalar value. A revision field only
// matches when the slot is occupied.
type Equals struct {
	State RevisionState
	Field Field
	Value interface{}
}

// Contains matches a case-insensitive substring of a text field.
type Contains struct {
	State RevisionState
	Field Field
	Value string
}

// HasAll matches when a list field contains every value.
type HasAll struct {
	State  RevisionState
	Field  Field
	Values []string
}

func (And) expr()      {}
func (Or) expr()       {}
func (Exists) expr()   {}
func (Equals) expr()   {}
func (Contains) expr() {}
func (HasAll) expr()   {}

// Filter is the caller-facing filter for listing items. Zero values leave a
// dimension unconstrained.
type Filter struct {
	Title     string   `json:"title,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Authors   []string `json:"authors,omitempty"`
	Published *bool    `json:"published,omitempty"`
	Draft     *bool    `json:"draft,omitempty"`
	Pending   *bool    `json:"pending,omitempty"`
	Shared    *bool    `json:"shared,omitempty"`
}

// Expr builds the expression tree for the filter: dimensions are joined
// with And, and revision dimensions match in any of the three slots.
func (f Filter) Expr() Expr {
	where := And{}

	if f.Title != "" {
		where = append(where, anySlot(func(state RevisionState) Expr {
			return Contains{State: state, Field: FieldTitle, Value: f.Title}
		}))
	}
	if f.Published != nil {
		where = append(where, Exists{State: StatePublished, Want: *f.Published})
	}
	if f.Draft != nil {
		where = append(where, Exists{State: StateDraft, Want: *f.Draft})
	}
	if f.Pending != nil {
		where = append(where, Exists{State: StatePending, Want: *f.Pending})
	}
	if f.Shared != nil {
		where = append(where, Equals{Field: FieldShared, Value: *f.Shared})
	}
	if len(f.Tags) > 0 {
		where = append(where, anySlot(func(state RevisionState) Expr {
			return HasAll{State: state, Field: FieldTags, Values: f.Tags}
		}))
	}
	if len(f.Authors) > 0 {
		where = append(where, anySlot(func(state RevisionState) Expr {
			return HasAll{State: state, Field: FieldAuthors, Values: f.Authors}
		}))
	}

	return where
}

func anySlot(build func(RevisionState) Expr) Or {
	or := make(Or, 0, len(AllStates))
	for _, state := range AllStates {
		or = append(or, build(state))
	}
	return or
}

// Match evaluates expr against item.
func Match(expr Expr, item *Item) (bool, error) {
	switch e := expr.(type) {
	case nil:
		return true, nil
	case And:
		for _, child := range e {
			ok, err := Match(child, item)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case Or:
		for _, child := range e {
			ok, err := Match(child, item)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case Exists:
		return (item.Revision(e.State) != nil) == e.Want, nil
	case Equals:
		return matchEquals(e, item)
	case Contains:
		rev := item.Revision(e.State)
		if rev == nil {
			return false, nil
		}
		text, err := textField(rev, e.Field)
		if err != nil {
			return false, err
		}
		return strings.Contains(strings.ToLower(text), strings.ToLower(e.Value)), nil
	case HasAll:
		rev := item.Revision(e.State)
		if rev == nil {
			return false, nil
		}
		list, err := listField(rev, e.Field)
		if err != nil {
			return false, err
		}
		return containsAll(list, e.Values), nil
	default:
		return false, fmt.Errorf("unsupported filter expression %T", expr)
	}
}

func matchEquals(e Equals, item *Item) (bool, error) {
	if e.State == "" {
		if e.Field != FieldShared {
			return false, fmt.Errorf("unsupported item field %q", e.Field)
		}
		want, ok := e.Value.(bool)
		if !ok {
			return false, fmt.Errorf("field %q expects a bool, got %T", e.Field, e.Value)
		}
		return item.Shared == want, nil
	}

	rev := item.Revision(e.State)
	if rev == nil {
		return false, nil
	}
	text, err := textField(rev, e.Field)
	if err != nil {
		return false, err
	}
	want, ok := e.Value.(string)
	if !ok {
		return false, fmt.Errorf("field %q expects a string, got %T", e.Field, e.Value)
	}
	return text == want, nil
}

func textField(rev *Revision, field Field) (string, error) {
	switch field {
	case FieldTitle:
		return rev.Title, nil
	case FieldSlug:
		return rev.Slug, nil
	default:
		return "", fmt.Errorf("field %q is not a text field", field)
	}
}

func listField(rev *Revision, field Field) ([]string, error) {
	switch field {
	case FieldTags:
		return rev.Tags, nil
	case FieldAuthors:
		return rev.AuthorIDs, nil
	default:
		return nil, fmt.Errorf("field %q is not a list field", field)
	}
}

func containsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, v := range have {
		set[v] = struct{}{}
	}
	for _, v := range want {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}
