package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

const (
	// DefaultPreviewHours is the preview link lifetime when the request names none.
	DefaultPreviewHours = 1
	// MaxPreviewHours caps the requested preview link lifetime at one year.
	MaxPreviewHours = 24 * 365
)

// PreviewLinkResponse is the response body for a preview link
type PreviewLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ItemHandler handles authenticated HTTP requests for one content kind
type ItemHandler struct {
	service publishing.Service
}

// NewItemHandler creates a new item handler
func NewItemHandler(service publishing.Service) *ItemHandler {
	return &ItemHandler{service: service}
}

// Routes returns the routes for items. The router expects a session in the
// request context, see Authenticate.
func (h *ItemHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Post("/{id}/publish", h.Publish)
	r.Post("/{id}/unpublish", h.Unpublish)
	r.Post("/{id}/duplicate", h.Duplicate)
	r.Get("/{id}/preview-link", h.PreviewLink)

	return r
}

// Create creates a new item with a draft
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req publishing.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.Create(r.Context(), SessionFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, "Failed to create item", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, item)
}

// List returns a page of items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	req, err := parseListRequest(r)
	if err != nil {
		writeError(w, r, "Invalid list request", err)
		return
	}

	conn, err := h.service.List(r.Context(), SessionFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, "Failed to list items", err)
		return
	}
	render.JSON(w, r, conn)
}

// Get returns a single item
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "Invalid item ID", err)
		return
	}

	item, err := h.service.Get(r.Context(), SessionFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, "Failed to get item", err)
		return
	}
	if item == nil {
		// Not shared with a caller limited to shared items.
		http.Error(w, publishing.ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	render.JSON(w, r, item)
}

// Update rewrites the draft of an item
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "Invalid item ID", err)
		return
	}

	var req publishing.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.Update(r.Context(), SessionFromContext(r.Context()), id, req)
	if err != nil {
		writeError(w, r, "Failed to update item", err)
		return
	}
	render.JSON(w, r, item)
}

// Delete removes an item and answers with its last state
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "Invalid item ID", err)
		return
	}

	item, err := h.service.Delete(r.Context(), SessionFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, "Failed to delete item", err)
		return
	}
	render.JSON(w, r, item)
}

// Publish publishes the draft now or schedules it. The body is optional.
func (h *ItemHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "Invalid item ID", err)
		return
	}

	var req publishing.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.Publish(r.Context(), SessionFromContext(r.Context()), id, req)
	if err != nil {
		writeError(w, r, "Failed to publish item", err)
		return
	}
	if item == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	render.JSON(w, r, item)
}

// Unpublish moves the live revision back to the draft
func (h *ItemHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "Invalid item ID", err)
		return
	}

	item, err := h.service.Unpublish(r.Context(), SessionFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, "Failed to unpublish item", err)
		return
	}
	render.JSON(w, r, item)
}

// Duplicate creates a copy of an item as a new draft
func (h *ItemHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "Invalid item ID", err)
		return
	}

	item, err := h.service.Duplicate(r.Context(), SessionFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, "Failed to duplicate item", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, item)
}

// PreviewLink returns a signed link to the draft
func (h *ItemHandler) PreviewLink(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "Invalid item ID", err)
		return
	}

	hours := DefaultPreviewHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		hours, err = strconv.Atoi(raw)
		if err != nil || hours > MaxPreviewHours {
			writeError(w, r, "Invalid preview lifetime", invalidParam("hours", raw))
			return
		}
	}
	ttl := time.Duration(hours) * time.Hour

	link, err := h.service.PreviewLink(r.Context(), SessionFromContext(r.Context()), id, ttl)
	if err != nil {
		writeError(w, r, "Failed to create preview link", err)
		return
	}
	render.JSON(w, r, PreviewLinkResponse{URL: link, ExpiresAt: time.Now().UTC().Add(ttl)})
}
