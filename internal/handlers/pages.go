// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blockcms/internal/blocks"
	"blockcms/internal/middleware"
	"blockcms/internal/models"
	"blockcms/internal/session"
	"blockcms/internal/workflow"
)

// PageCache is the slice of the Valkey page cache the handlers drive.
type PageCache interface {
	Get(ctx context.Context, slug string) ([]byte, bool)
	Set(ctx context.Context, slug string, payload []byte)
	Invalidate(ctx context.Context, slug string)
}

// Pages groups the page CRUD and public read handlers. Published pages
// served by slug go through the Valkey cache.
type Pages struct {
	svc       *workflow.PageService
	pageCache PageCache
}

// NewPages creates a new Pages handler group.
func NewPages(svc *workflow.PageService, pageCache PageCache) *Pages {
	return &Pages{svc: svc, pageCache: pageCache}
}

// blockRequest is one submitted block. State carries the client-side
// staging marker; empty means unmodified.
type blockRequest struct {
	ID       *uuid.UUID `json:"id"`
	Type     string     `json:"type"`
	Content  string     `json:"content"`
	Position int        `json:"position"`
	State    string     `json:"state"`
}

// pageRequest is the create/update body. Blocks may be omitted on update
// to leave the block set untouched.
type pageRequest struct {
	ID          *uuid.UUID     `json:"id"`
	Title       string         `json:"title"`
	PublishDate *string        `json:"publishDate"`
	AuthorID    *uuid.UUID     `json:"authorId"`
	Blocks      []blockRequest `json:"blocks"`
}

type blockResponse struct {
	ID       uuid.UUID        `json:"id"`
	Type     models.BlockType `json:"type"`
	Position int              `json:"position"`
	Content  string           `json:"content"`
}

// pageResponse is the wire shape of a page. AuthorID appears only when
// the viewer is an admin or the page's owner.
type pageResponse struct {
	ID           uuid.UUID         `json:"id"`
	Title        string            `json:"title"`
	Slug         string            `json:"slug"`
	Status       models.PageStatus `json:"status"`
	Author       string            `json:"author"`
	AuthorID     *uuid.UUID        `json:"authorId,omitempty"`
	CreationDate string            `json:"creationDate"`
	PublishDate  *string           `json:"publishDate"`
	Blocks       []blockResponse   `json:"blocks,omitempty"`
}

// actorFrom builds the authorization actor from the loaded session.
// The zero Actor (anonymous) satisfies no policy.
func actorFrom(sess *session.Data) workflow.Actor {
	if sess == nil {
		return workflow.Actor{}
	}
	return workflow.Actor{ID: sess.UserID, Role: sess.Role}
}

// pageJSON converts a page for the given viewer.
func pageJSON(p *models.Page, set []models.Block, viewer workflow.Actor) pageResponse {
	resp := pageResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Status:       p.Status(),
		Author:       p.AuthorName,
		CreationDate: p.CreationDate.Format(time.DateOnly),
	}
	if p.PublishDate != nil {
		d := p.PublishDate.Format(time.DateOnly)
		resp.PublishDate = &d
	}
	if viewer.IsAdmin() || viewer.ID == p.AuthorID {
		id := p.AuthorID
		resp.AuthorID = &id
	}
	for _, b := range set {
		resp.Blocks = append(resp.Blocks, blockResponse{
			ID:       b.ID,
			Type:     b.Type,
			Position: b.Position,
			Content:  b.Content,
		})
	}
	return resp
}

// toInput converts the request body to a workflow input. Unknown staging
// markers are a client error.
func (pr *pageRequest) toInput() (workflow.PageInput, error) {
	in := workflow.PageInput{
		Title:       pr.Title,
		PublishDate: pr.PublishDate,
	}
	if pr.AuthorID != nil {
		in.AuthorID = *pr.AuthorID
	}
	if pr.Blocks != nil {
		in.Blocks = make([]workflow.BlockInput, len(pr.Blocks))
		for i, b := range pr.Blocks {
			state, err := blocks.ParseState(b.State)
			if err != nil {
				return in, fmt.Errorf("block %d: %w", b.Position, err)
			}
			bi := workflow.BlockInput{
				Type:     models.BlockType(b.Type),
				Content:  b.Content,
				Position: b.Position,
				State:    state,
			}
			if b.ID != nil {
				bi.ID = *b.ID
			}
			in.Blocks[i] = bi
		}
	}
	return in, nil
}

// List returns every page, newest first, without blocks.
func (h *Pages) List(w http.ResponseWriter, r *http.Request) {
	viewer := actorFrom(middleware.SessionFromCtx(r.Context()))

	pages, err := h.svc.List()
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	out := make([]pageResponse, 0, len(pages))
	for i := range pages {
		out = append(out, pageJSON(&pages[i], nil, viewer))
	}
	respondJSON(w, http.StatusOK, out)
}

// Get returns a page with its blocks.
func (h *Pages) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid page id")
		return
	}
	viewer := actorFrom(middleware.SessionFromCtx(r.Context()))

	detail, err := h.svc.Get(id)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pageJSON(&detail.Page, detail.Blocks, viewer))
}

// Create validates and persists a new page owned by the acting user.
func (h *Pages) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(middleware.SessionFromCtx(r.Context()))

	var req pageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.svc.Create(actor, in)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	h.pageCache.Invalidate(r.Context(), detail.Page.Slug)
	respondJSON(w, http.StatusCreated, pageJSON(&detail.Page, detail.Blocks, actor))
}

// Update applies changes to an existing page. The body id, when present,
// must match the URL id.
func (h *Pages) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid page id")
		return
	}
	actor := actorFrom(middleware.SessionFromCtx(r.Context()))

	var req pageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.ID != nil && *req.ID != id {
		respondError(w, http.StatusBadRequest, "Body id must match URL id")
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The slug may change with the title; drop both cache entries.
	oldSlug := ""
	if existing, err := h.svc.Get(id); err == nil {
		oldSlug = existing.Page.Slug
	}

	detail, err := h.svc.Update(actor, id, in)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	if oldSlug != "" && oldSlug != detail.Page.Slug {
		h.pageCache.Invalidate(r.Context(), oldSlug)
	}
	h.pageCache.Invalidate(r.Context(), detail.Page.Slug)
	respondJSON(w, http.StatusOK, pageJSON(&detail.Page, detail.Blocks, actor))
}

// Delete removes a page and, through the database cascade, its blocks.
func (h *Pages) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid page id")
		return
	}
	actor := actorFrom(middleware.SessionFromCtx(r.Context()))

	slug := ""
	if existing, err := h.svc.Get(id); err == nil {
		slug = existing.Page.Slug
	}

	if err := h.svc.Delete(actor, id); err != nil {
		respondWorkflowError(w, err)
		return
	}

	if slug != "" {
		h.pageCache.Invalidate(r.Context(), slug)
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Filters serves the public read path: a published page by slug, or the
// list of published pages.
func (h *Pages) Filters(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("filterId") {
	case "slug":
		h.publishedBySlug(w, r, r.URL.Query().Get("value"))
	case "published":
		h.publishedList(w, r)
	default:
		respondError(w, http.StatusBadRequest, "Unknown filterId")
	}
}

func (h *Pages) publishedBySlug(w http.ResponseWriter, r *http.Request, slug string) {
	if slug == "" {
		respondError(w, http.StatusBadRequest, "Missing slug value")
		return
	}

	ctx := r.Context()
	if payload, ok := h.pageCache.Get(ctx, slug); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(payload)
		return
	}

	detail, err := h.svc.GetPublishedBySlug(slug)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	// Public view: no authorId.
	body := pageJSON(&detail.Page, detail.Blocks, workflow.Actor{})
	payload, err := jsonBytes(body)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}
	h.pageCache.Set(ctx, slug, payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func (h *Pages) publishedList(w http.ResponseWriter, r *http.Request) {
	pages, err := h.svc.ListPublished()
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	out := make([]pageResponse, 0, len(pages))
	for i := range pages {
		out = append(out, pageJSON(&pages[i], nil, workflow.Actor{}))
	}
	respondJSON(w, http.StatusOK, out)
}
