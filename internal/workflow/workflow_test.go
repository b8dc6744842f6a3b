package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"blockcms/internal/blocks"
	"blockcms/internal/models"
)

// fakeStore is an in-memory PageStore+BlockStore for workflow tests.
type fakeStore struct {
	pages     map[uuid.UUID]models.Page
	blockSets map[uuid.UUID][]models.Block
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pages:     make(map[uuid.UUID]models.Page),
		blockSets: make(map[uuid.UUID][]models.Block),
	}
}

func (f *fakeStore) List() ([]models.Page, error) {
	var out []models.Page
	for _, p := range f.pages {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) ListPublished(today time.Time) ([]models.Page, error) {
	var out []models.Page
	for _, p := range f.pages {
		if p.PublishDate != nil && !p.PublishDate.After(today) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByID(id uuid.UUID) (*models.Page, error) {
	p, ok := f.pages[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) FindPublishedBySlug(slug string, today time.Time) (*models.Page, error) {
	for _, p := range f.pages {
		if p.Slug == slug && p.PublishDate != nil && !p.PublishDate.After(today) {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateWithBlocks(p *models.Page, set []models.Block) (uuid.UUID, error) {
	id := uuid.New()
	page := *p
	page.ID = id
	f.pages[id] = page
	f.blockSets[id] = cloneBlocks(id, set)
	return id, nil
}

func (f *fakeStore) UpdateWithBlocks(p *models.Page, set []models.Block, replaceBlocks bool) error {
	if _, ok := f.pages[p.ID]; !ok {
		return errors.New("page not found")
	}
	f.pages[p.ID] = *p
	if replaceBlocks {
		// Delete-all-then-reinsert, as the real store does in one transaction.
		f.blockSets[p.ID] = cloneBlocks(p.ID, set)
	}
	return nil
}

func (f *fakeStore) Delete(id uuid.UUID) (int64, error) {
	if _, ok := f.pages[id]; !ok {
		return 0, nil
	}
	delete(f.pages, id)
	delete(f.blockSets, id)
	return 1, nil
}

func (f *fakeStore) ListByPage(pageID uuid.UUID) ([]models.Block, error) {
	return f.blockSets[pageID], nil
}

func cloneBlocks(pageID uuid.UUID, set []models.Block) []models.Block {
	out := make([]models.Block, len(set))
	for i, b := range set {
		b.ID = uuid.New()
		b.PageID = pageID
		out[i] = b
	}
	return out
}

// newService wires a PageService to a fresh fake store with a fixed clock.
func newService(t *testing.T, now time.Time) (*PageService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewPageService(store, store)
	svc.now = func() time.Time { return now }
	return svc, store
}

func fixedNow() time.Time {
	return time.Date(2026, time.June, 10, 14, 30, 0, 0, time.Local)
}

func author() Actor {
	return Actor{ID: uuid.New(), Role: models.RoleAuthor}
}

func admin() Actor {
	return Actor{ID: uuid.New(), Role: models.RoleAdmin}
}

func validBlocks() []BlockInput {
	return []BlockInput{
		{Type: models.BlockHeader, Content: "Hi", Position: 1},
		{Type: models.BlockParagraph, Content: "World", Position: 2},
	}
}

func TestCreateDraftPage(t *testing.T) {
	svc, _ := newService(t, fixedNow())
	actor := author()

	detail, err := svc.Create(actor, PageInput{Title: "Hello", Blocks: validBlocks()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if detail.Page.Status() != models.StatusDraft {
		t.Errorf("status: got %q, want draft", detail.Page.Status())
	}
	if detail.Page.Slug != "hello" {
		t.Errorf("slug: got %q, want %q", detail.Page.Slug, "hello")
	}
	if detail.Page.AuthorID != actor.ID {
		t.Error("page must be owned by the acting user")
	}
	if len(detail.Blocks) != 2 {
		t.Fatalf("blocks: got %d, want 2", len(detail.Blocks))
	}
	for i, b := range detail.Blocks {
		if b.Position != i+1 {
			t.Errorf("block %d position: got %d, want %d", i, b.Position, i+1)
		}
		if b.ID == uuid.Nil {
			t.Error("expected server-assigned block id")
		}
	}
}

func TestCreateValidationIsItemized(t *testing.T) {
	svc, store := newService(t, fixedNow())

	bad := "not-a-date"
	_, err := svc.Create(author(), PageInput{Title: "  ", PublishDate: &bad})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Fields) != 3 {
		t.Errorf("expected 3 field errors (title, publishDate, blocks), got %d: %v", len(verr.Fields), verr.Fields)
	}
	if len(store.pages) != 0 {
		t.Error("nothing may be written on validation failure")
	}
}

func TestCreateRejectsCompositionViolations(t *testing.T) {
	svc, _ := newService(t, fixedNow())

	// No header.
	_, err := svc.Create(author(), PageInput{
		Title: "No header",
		Blocks: []BlockInput{
			{Type: models.BlockParagraph, Content: "a", Position: 1},
			{Type: models.BlockImage, Content: "b", Position: 2},
		},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Header but no content block.
	_, err = svc.Create(author(), PageInput{
		Title: "No content",
		Blocks: []BlockInput{
			{Type: models.BlockHeader, Content: "a", Position: 1},
		},
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsUnresolvedStagedBlocks(t *testing.T) {
	svc, store := newService(t, fixedNow())

	in := PageInput{
		Title: "Staged",
		Blocks: []BlockInput{
			{Type: models.BlockHeader, Content: "a", Position: 1},
			{Type: models.BlockParagraph, Content: "b", Position: 2, State: blocks.Inserted},
		},
	}
	_, err := svc.Create(author(), in)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.pages) != 0 {
		t.Error("nothing may be written while staged blocks are unresolved")
	}
}

func TestCreatePublishDateRules(t *testing.T) {
	svc, _ := newService(t, fixedNow())

	past := "2026-06-09" // yesterday relative to the fixed clock
	_, err := svc.Create(author(), PageInput{Title: "Past", PublishDate: &past, Blocks: validBlocks()})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for pre-creation publish date, got %v", err)
	}

	today := "2026-06-10"
	detail, err := svc.Create(author(), PageInput{Title: "Today", PublishDate: &today, Blocks: validBlocks()})
	if err != nil {
		t.Fatalf("Create with today's date: %v", err)
	}
	if got := models.StatusOn(detail.Page.PublishDate, fixedNow()); got != models.StatusPublished {
		t.Errorf("status: got %q, want published", got)
	}

	future := "2026-07-01"
	detail, err = svc.Create(author(), PageInput{Title: "Future", PublishDate: &future, Blocks: validBlocks()})
	if err != nil {
		t.Fatalf("Create with future date: %v", err)
	}
	if got := models.StatusOn(detail.Page.PublishDate, fixedNow()); got != models.StatusScheduled {
		t.Errorf("status: got %q, want scheduled", got)
	}
}

func TestUpdateRequiresOwnershipOrAdmin(t *testing.T) {
	svc, store := newService(t, fixedNow())
	owner := author()

	detail, err := svc.Create(owner, PageInput{Title: "Mine", Blocks: validBlocks()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A different non-admin author cannot touch it.
	_, err = svc.Update(author(), detail.Page.ID, PageInput{Title: "Stolen", Blocks: validBlocks()})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if store.pages[detail.Page.ID].Title != "Mine" {
		t.Error("page must be unchanged after a forbidden update")
	}

	// An admin can.
	updated, err := svc.Update(admin(), detail.Page.ID, PageInput{Title: "Renamed"})
	if err != nil {
		t.Fatalf("admin Update: %v", err)
	}
	if updated.Page.Title != "Renamed" || updated.Page.Slug != "renamed" {
		t.Errorf("got title %q slug %q", updated.Page.Title, updated.Page.Slug)
	}
}

func TestUpdateAuthorReassignmentIsAdminOnly(t *testing.T) {
	svc, store := newService(t, fixedNow())
	owner := author()
	other := author()

	detail, _ := svc.Create(owner, PageInput{Title: "Mine", Blocks: validBlocks()})

	// Non-admin owner sending a different author is refused before any write.
	_, err := svc.Update(owner, detail.Page.ID, PageInput{Title: "Changed", AuthorID: other.ID})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if got := store.pages[detail.Page.ID]; got.Title != "Mine" || got.AuthorID != owner.ID {
		t.Error("page must be unchanged after rejected reassignment")
	}

	// Sending their own id is fine.
	if _, err := svc.Update(owner, detail.Page.ID, PageInput{Title: "Still mine", AuthorID: owner.ID}); err != nil {
		t.Fatalf("owner Update with own author id: %v", err)
	}

	// Admin reassigns.
	updated, err := svc.Update(admin(), detail.Page.ID, PageInput{Title: "Handed over", AuthorID: other.ID})
	if err != nil {
		t.Fatalf("admin reassignment: %v", err)
	}
	if updated.Page.AuthorID != other.ID {
		t.Error("expected author reassigned")
	}
}

func TestUpdateReplacesBlockSet(t *testing.T) {
	svc, _ := newService(t, fixedNow())
	owner := author()

	detail, _ := svc.Create(owner, PageInput{Title: "Doc", Blocks: validBlocks()})
	oldIDs := map[uuid.UUID]bool{}
	for _, b := range detail.Blocks {
		oldIDs[b.ID] = true
	}

	updated, err := svc.Update(owner, detail.Page.ID, PageInput{
		Title: "Doc",
		Blocks: []BlockInput{
			{Type: models.BlockImage, Content: "/static/images/dog.svg", Position: 5},
			{Type: models.BlockHeader, Content: "New", Position: 2},
			{Type: models.BlockParagraph, Content: "Text", Position: 9},
		},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(updated.Blocks) != 3 {
		t.Fatalf("blocks: got %d, want 3", len(updated.Blocks))
	}
	// Renumbered 1..N in submitted relative order.
	wantOrder := []models.BlockType{models.BlockHeader, models.BlockImage, models.BlockParagraph}
	for i, b := range updated.Blocks {
		if b.Position != i+1 {
			t.Errorf("block %d position: got %d", i, b.Position)
		}
		if b.Type != wantOrder[i] {
			t.Errorf("block %d type: got %q, want %q", i, b.Type, wantOrder[i])
		}
		// Delete-all-and-reinsert churns block ids.
		if oldIDs[b.ID] {
			t.Error("expected fresh block ids after replacement")
		}
	}
}

func TestUpdateWithoutBlocksLeavesBlocksAlone(t *testing.T) {
	svc, _ := newService(t, fixedNow())
	owner := author()

	detail, _ := svc.Create(owner, PageInput{Title: "Doc", Blocks: validBlocks()})

	updated, err := svc.Update(owner, detail.Page.ID, PageInput{Title: "Doc v2"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Blocks) != 2 {
		t.Errorf("blocks: got %d, want 2 untouched", len(updated.Blocks))
	}
}

func TestUpdatePublishDateUsesExistingCreationDate(t *testing.T) {
	svc, _ := newService(t, fixedNow())
	owner := author()

	detail, _ := svc.Create(owner, PageInput{Title: "Doc", Blocks: validBlocks()})

	// Move the clock two days forward; yesterday is now after the
	// creation date, so backdating to yesterday is legal and the page
	// reads as published without any further write.
	svc.now = func() time.Time { return fixedNow().AddDate(0, 0, 2) }

	yesterday := "2026-06-11"
	updated, err := svc.Update(owner, detail.Page.ID, PageInput{Title: "Doc", PublishDate: &yesterday})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := models.StatusOn(updated.Page.PublishDate, svc.now()); got != models.StatusPublished {
		t.Errorf("status: got %q, want published", got)
	}

	// But before the creation date it is still refused.
	tooEarly := "2026-06-09"
	_, err = svc.Update(owner, detail.Page.ID, PageInput{Title: "Doc", PublishDate: &tooEarly})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdatePublishDateFloorIgnoresLocation(t *testing.T) {
	svc, store := newService(t, fixedNow())
	owner := author()

	detail, _ := svc.Create(owner, PageInput{Title: "Doc", Blocks: validBlocks()})

	// A creation date reloaded from the database carries UTC and may
	// carry a time of day after the submitted date's instant. Setting
	// the publish date to the creation day itself must still pass.
	p := store.pages[detail.Page.ID]
	p.CreationDate = time.Date(2026, time.June, 10, 20, 0, 0, 0, time.UTC)
	store.pages[detail.Page.ID] = p

	sameDay := "2026-06-10"
	if _, err := svc.Update(owner, detail.Page.ID, PageInput{Title: "Doc", PublishDate: &sameDay}); err != nil {
		t.Fatalf("Update with publish date on the creation day: %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	svc, store := newService(t, fixedNow())
	owner := author()

	detail, _ := svc.Create(owner, PageInput{Title: "Doc", Blocks: validBlocks()})

	// A stranger cannot delete it.
	if err := svc.Delete(author(), detail.Page.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if err := svc.Delete(owner, detail.Page.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(detail.Page.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if set, _ := store.ListByPage(detail.Page.ID); len(set) != 0 {
		t.Error("expected no blocks retrievable after page delete")
	}
}

func TestDeleteMissingPage(t *testing.T) {
	svc, _ := newService(t, fixedNow())
	if err := svc.Delete(admin(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPublishedBySlug(t *testing.T) {
	svc, _ := newService(t, fixedNow())
	owner := author()

	today := "2026-06-10"
	published, _ := svc.Create(owner, PageInput{Title: "Public Post", PublishDate: &today, Blocks: validBlocks()})
	if _, err := svc.Create(owner, PageInput{Title: "Secret Draft", Blocks: validBlocks()}); err != nil {
		t.Fatalf("Create draft: %v", err)
	}

	detail, err := svc.GetPublishedBySlug(published.Page.Slug)
	if err != nil {
		t.Fatalf("GetPublishedBySlug: %v", err)
	}
	if len(detail.Blocks) != 2 {
		t.Errorf("blocks: got %d, want 2", len(detail.Blocks))
	}

	if _, err := svc.GetPublishedBySlug("secret-draft"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("draft must not be reachable by slug: got %v", err)
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	svc, _ := newService(t, fixedNow())
	owner := author()

	in := PageInput{Title: "Hello", Blocks: validBlocks()}
	created, err := svc.Create(owner, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(created.Page.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Page.Title != "Hello" || got.Page.Status() != models.StatusDraft {
		t.Errorf("round trip: title %q status %q", got.Page.Title, got.Page.Status())
	}
	if got.Blocks[0].Content != "Hi" || got.Blocks[1].Content != "World" {
		t.Error("block content/order must survive the round trip")
	}
}

func TestActorPolicy(t *testing.T) {
	owner := uuid.New()

	if !(Actor{ID: owner, Role: models.RoleAuthor}).CanOperate(owner) {
		t.Error("owner must pass the policy")
	}
	if (Actor{ID: uuid.New(), Role: models.RoleAuthor}).CanOperate(owner) {
		t.Error("non-owner author must fail the policy")
	}
	if !(Actor{ID: uuid.New(), Role: models.RoleAdmin}).CanOperate(owner) {
		t.Error("admin must pass the policy")
	}
	if (Actor{}).CanOperate(uuid.Nil) {
		t.Error("anonymous actor must never pass the policy")
	}
}
