// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package workflow implements the page editing and publication workflow:
// validation of page+block submissions, the authorization policy, and
// orchestration of the persistence layer so a page's blocks are always
// consistent with their owning page. Stores are injected as interfaces;
// the package holds no global state.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"blockcms/internal/blocks"
	"blockcms/internal/models"
	"blockcms/internal/slug"
)

// PageStore is the persistence interface the workflow drives for pages.
// Multi-row writes (page + blocks) are transactional inside the store.
type PageStore interface {
	List() ([]models.Page, error)
	ListPublished(today time.Time) ([]models.Page, error)
	FindByID(id uuid.UUID) (*models.Page, error)
	FindPublishedBySlug(slug string, today time.Time) (*models.Page, error)
	CreateWithBlocks(p *models.Page, set []models.Block) (uuid.UUID, error)
	UpdateWithBlocks(p *models.Page, set []models.Block, replaceBlocks bool) error
	Delete(id uuid.UUID) (int64, error)
}

// BlockStore is the persistence interface for reading a page's blocks.
type BlockStore interface {
	ListByPage(pageID uuid.UUID) ([]models.Block, error)
}

// BlockInput is one submitted block. ID is zero for blocks that were
// never persisted. State carries the client's staging marker; an empty
// marker on the wire means unmodified.
type BlockInput struct {
	ID       uuid.UUID
	Type     models.BlockType
	Content  string
	Position int
	State    blocks.State
}

// PageInput is a page submission for Create or Update. PublishDate is
// the raw wire value ("2006-01-02") or nil for a draft. Blocks is nil
// on updates that leave the block set untouched. AuthorID is honored
// only on admin updates.
type PageInput struct {
	Title       string
	PublishDate *string
	AuthorID    uuid.UUID
	Blocks      []BlockInput
}

// PageDetail is a page together with its ordered blocks, as reloaded
// from the store after a write so callers observe server-derived fields.
type PageDetail struct {
	Page   models.Page
	Blocks []models.Block
}

// PageService orchestrates the page workflow against injected stores.
type PageService struct {
	pages  PageStore
	blocks BlockStore
	now    func() time.Time
}

// NewPageService creates a PageService. The clock defaults to time.Now.
func NewPageService(pages PageStore, blockStore BlockStore) *PageService {
	return &PageService{pages: pages, blocks: blockStore, now: time.Now}
}

// Create validates and persists a new page with its block set, owned by
// the acting user, and returns the reloaded page+blocks. Validation
// failures are itemized and nothing is written.
func (s *PageService) Create(actor Actor, in PageInput) (*PageDetail, error) {
	today := s.today()

	verr := &ValidationError{}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		verr.add("title", "title must not be empty")
	}
	publish := s.validatePublishDate(verr, in.PublishDate, today)

	if in.Blocks == nil {
		verr.add("blocks", "blocks list required")
	}
	set := s.commitBlocks(verr, in.Blocks)

	if !verr.ok() {
		return nil, verr
	}

	page := &models.Page{
		Title:        title,
		Slug:         slug.Generate(title),
		CreationDate: today,
		PublishDate:  publish,
		AuthorID:     actor.ID,
	}

	id, err := s.pages.CreateWithBlocks(page, set)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return s.reload(id)
}

// Update validates and applies changes to an existing page. The acting
// user must satisfy the authorization policy against the current owner,
// and only admins may reassign the author. When a block set is supplied
// it replaces the page's blocks wholesale; when nil the blocks stay
// untouched. Returns the reloaded page+blocks.
func (s *PageService) Update(actor Actor, id uuid.UUID, in PageInput) (*PageDetail, error) {
	existing, err := s.pages.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if !actor.CanOperate(existing.AuthorID) {
		return nil, ErrForbidden
	}

	// A non-admin submitting any author other than themselves is refused
	// before anything is validated or written.
	authorID := existing.AuthorID
	if in.AuthorID != uuid.Nil {
		if in.AuthorID != actor.ID && !actor.IsAdmin() {
			return nil, ErrForbidden
		}
		if actor.IsAdmin() {
			authorID = in.AuthorID
		}
	}

	verr := &ValidationError{}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		verr.add("title", "title must not be empty")
	}
	// The not-before check runs against the page's original creation
	// date, not today.
	publish := s.validatePublishDate(verr, in.PublishDate, existing.CreationDate)

	var set []models.Block
	if in.Blocks != nil {
		set = s.commitBlocks(verr, in.Blocks)
	}

	if !verr.ok() {
		return nil, verr
	}

	updated := &models.Page{
		ID:           existing.ID,
		Title:        title,
		Slug:         slug.Generate(title),
		CreationDate: existing.CreationDate,
		PublishDate:  publish,
		AuthorID:     authorID,
	}

	if err := s.pages.UpdateWithBlocks(updated, set, in.Blocks != nil); err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	return s.reload(id)
}

// Delete removes a page after an authorization check. The store's
// foreign-key cascade removes the page's blocks in the same operation.
func (s *PageService) Delete(actor Actor, id uuid.UUID) error {
	existing, err := s.pages.FindByID(id)
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}
	if existing == nil {
		return ErrNotFound
	}
	if !actor.CanOperate(existing.AuthorID) {
		return ErrForbidden
	}

	if _, err := s.pages.Delete(id); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

// Get returns a page with its blocks, or ErrNotFound.
func (s *PageService) Get(id uuid.UUID) (*PageDetail, error) {
	detail, err := s.reload(id)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// List returns every page, newest first.
func (s *PageService) List() ([]models.Page, error) {
	return s.pages.List()
}

// ListPublished returns pages whose publish date has arrived, as of today.
func (s *PageService) ListPublished() ([]models.Page, error) {
	return s.pages.ListPublished(s.today())
}

// GetPublishedBySlug returns a published page with its blocks by slug,
// or ErrNotFound. Draft and scheduled pages are never returned here.
func (s *PageService) GetPublishedBySlug(pageSlug string) (*PageDetail, error) {
	page, err := s.pages.FindPublishedBySlug(pageSlug, s.today())
	if err != nil {
		return nil, fmt.Errorf("load page by slug: %w", err)
	}
	if page == nil {
		return nil, ErrNotFound
	}

	set, err := s.blocks.ListByPage(page.ID)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	return &PageDetail{Page: *page, Blocks: set}, nil
}

// validatePublishDate parses the wire date and enforces the not-before
// rule against the given floor (today on create, the page's creation
// date on update). Returns nil for drafts.
func (s *PageService) validatePublishDate(verr *ValidationError, raw *string, floor time.Time) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	publish, err := time.Parse(time.DateOnly, *raw)
	if err != nil {
		verr.add("publishDate", "publish date must be a valid date (YYYY-MM-DD)")
		return nil
	}
	// The floor may carry any location (stored creation dates come back
	// as midnight UTC); compare calendar dates, not instants.
	if publish.Before(models.DateOf(floor)) {
		verr.add("publishDate", "a page cannot be published before its creation")
		return nil
	}
	return &publish
}

// commitBlocks runs the submitted blocks through the ordering engine and
// the page composition rule, collecting failures into verr.
func (s *PageService) commitBlocks(verr *ValidationError, in []BlockInput) []models.Block {
	if in == nil {
		return nil
	}

	staged := make([]blocks.Staged, len(in))
	for i, b := range in {
		staged[i] = blocks.Staged{
			Block: models.Block{
				ID:       b.ID,
				Type:     b.Type,
				Position: b.Position,
				Content:  b.Content,
			},
			State: b.State,
		}
	}

	set, err := blocks.NewStagedSequence(staged).Commit()
	if err != nil {
		verr.add("blocks", err.Error())
		return nil
	}

	for _, b := range set {
		if !b.Type.Valid() {
			verr.add("blocks", fmt.Sprintf("block %d: unknown type %q", b.Position, b.Type))
			return nil
		}
		if strings.TrimSpace(b.Content) == "" {
			verr.add("blocks", fmt.Sprintf("block %d: content must not be empty", b.Position))
			return nil
		}
	}

	if err := blocks.ValidateSet(set); err != nil {
		verr.add("blocks", err.Error())
		return nil
	}
	return set
}

// reload fetches the canonical page+blocks from the store.
func (s *PageService) reload(id uuid.UUID) (*PageDetail, error) {
	page, err := s.pages.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("reload page: %w", err)
	}
	if page == nil {
		return nil, ErrNotFound
	}
	set, err := s.blocks.ListByPage(id)
	if err != nil {
		return nil, fmt.Errorf("reload blocks: %w", err)
	}
	return &PageDetail{Page: *page, Blocks: set}, nil
}

// today reduces the clock to its calendar date.
func (s *PageService) today() time.Time {
	return models.DateOf(s.now())
}
