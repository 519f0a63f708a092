package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

// PublicHandler handles unauthenticated reads of published items
type PublicHandler struct {
	service publishing.Service
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(service publishing.Service) *PublicHandler {
	return &PublicHandler{service: service}
}

// Routes returns the public routes
func (h *PublicHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/lookup", h.Lookup)

	return r
}

// List returns a page of published items
func (h *PublicHandler) List(w http.ResponseWriter, r *http.Request) {
	req, err := parseListRequest(r)
	if err != nil {
		writeError(w, r, "Invalid list request", err)
		return
	}

	conn, err := h.service.ListPublished(r.Context(), req)
	if err != nil {
		writeError(w, r, "Failed to list published items", err)
		return
	}
	render.JSON(w, r, conn)
}

// Lookup returns a single published item by id or slug, or a draft by
// preview token
func (h *PublicHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := publishing.LookupRequest{
		Slug:  q.Get("slug"),
		Token: q.Get("token"),
	}
	if raw := q.Get("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, "Invalid item ID", invalidParam("id", raw))
			return
		}
		req.ID = &id
	}

	item, err := h.service.GetPublished(r.Context(), req)
	if err != nil {
		writeError(w, r, "Failed to look up item", err)
		return
	}
	render.JSON(w, r, item)
}
