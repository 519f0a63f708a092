package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

func invalidParam(name, value string) error {
	return &publishing.UserInputError{Message: fmt.Sprintf("invalid %s %q", name, value)}
}

func idParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidParam("id", raw)
	}
	return id, nil
}

// parseListRequest reads filter, ordering and paging from the query string.
// List parameters accept repeated keys and comma separated values.
func parseListRequest(r *http.Request) (publishing.ListRequest, error) {
	q := r.URL.Query()
	req := publishing.ListRequest{
		Filter: publishing.Filter{
			Title:   q.Get("title"),
			Tags:    listParam(q["tags"]),
			Authors: listParam(q["authors"]),
		},
		Sort:  publishing.SortField(q.Get("sort")),
		Order: publishing.SortOrder(q.Get("order")),
	}

	bools := []struct {
		name string
		dst  **bool
	}{
		{"published", &req.Filter.Published},
		{"draft", &req.Filter.Draft},
		{"pending", &req.Filter.Pending},
		{"shared", &req.Filter.Shared},
	}
	for _, b := range bools {
		raw := q.Get(b.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return req, invalidParam(b.name, raw)
		}
		*b.dst = &v
	}

	if raw := q.Get("cursor"); raw != "" {
		cursor, err := uuid.Parse(raw)
		if err != nil {
			return req, invalidParam("cursor", raw)
		}
		req.Cursor = &cursor
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"skip", &req.Skip},
		{"take", &req.Take},
	}
	for _, i := range ints {
		raw := q.Get(i.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return req, invalidParam(i.name, raw)
		}
		*i.dst = v
	}

	return req, nil
}

func listParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
