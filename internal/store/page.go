// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blockcms/internal/models"
)

// PageStore handles all page-related database operations. Writes that
// touch a page together with its blocks run in a single transaction so
// the store never exposes a page with a partial block set.
type PageStore struct {
	db *sql.DB
}

// NewPageStore creates a new PageStore with the given database connection.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

const pageColumns = `p.id, p.title, p.slug, p.creation_date, p.publish_date, p.author_id, u.display_name, p.created_at, p.updated_at`

func scanPage(scan func(...any) error) (*models.Page, error) {
	p := &models.Page{}
	err := scan(
		&p.ID, &p.Title, &p.Slug, &p.CreationDate, &p.PublishDate,
		&p.AuthorID, &p.AuthorName, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns every page with its author's display name, newest first.
func (s *PageStore) List() ([]models.Page, error) {
	rows, err := s.db.Query(`
		SELECT ` + pageColumns + `
		FROM pages p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.creation_date DESC, p.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()
	return collectPages(rows)
}

// ListPublished returns pages whose publish date has arrived as of the
// given day, most recently published first. The day is bound as a plain
// calendar date so the DATE column comparison never shifts with the
// server's zone offset.
func (s *PageStore) ListPublished(today time.Time) ([]models.Page, error) {
	rows, err := s.db.Query(`
		SELECT `+pageColumns+`
		FROM pages p
		JOIN users u ON u.id = p.author_id
		WHERE p.publish_date IS NOT NULL AND p.publish_date <= $1::date
		ORDER BY p.publish_date DESC
	`, today.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("list published pages: %w", err)
	}
	defer rows.Close()
	return collectPages(rows)
}

func collectPages(rows *sql.Rows) ([]models.Page, error) {
	var pages []models.Page
	for rows.Next() {
		p, err := scanPage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// FindByID retrieves a page by its UUID. Returns nil if not found.
func (s *PageStore) FindByID(id uuid.UUID) (*models.Page, error) {
	p, err := scanPage(s.db.QueryRow(`
		SELECT `+pageColumns+`
		FROM pages p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published page by slug as of the given
// day. Drafts and scheduled pages are invisible here. Returns nil if not
// found.
func (s *PageStore) FindPublishedBySlug(slug string, today time.Time) (*models.Page, error) {
	p, err := scanPage(s.db.QueryRow(`
		SELECT `+pageColumns+`
		FROM pages p
		JOIN users u ON u.id = p.author_id
		WHERE p.slug = $1 AND p.publish_date IS NOT NULL AND p.publish_date <= $2::date
	`, slug, today.Format(time.DateOnly)).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by slug: %w", err)
	}
	return p, nil
}

// CreateWithBlocks inserts a page and its block set in one transaction
// and returns the new page id. Either everything lands or nothing does.
func (s *PageStore) CreateWithBlocks(p *models.Page, set []models.Block) (uuid.UUID, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return uuid.Nil, fmt.Errorf("create page: begin: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRow(`
		INSERT INTO pages (title, slug, author_id, creation_date, publish_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.Title, p.Slug, p.AuthorID, p.CreationDate, p.PublishDate).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert page: %w", err)
	}

	if err := insertBlocks(tx, id, set); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("create page: commit: %w", err)
	}
	return id, nil
}

// UpdateWithBlocks updates a page row and, when replaceBlocks is set,
// swaps its whole block set (delete-all-then-reinsert) in the same
// transaction.
func (s *PageStore) UpdateWithBlocks(p *models.Page, set []models.Block, replaceBlocks bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("update page: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE pages SET title = $1, slug = $2, author_id = $3, publish_date = $4, updated_at = NOW()
		WHERE id = $5
	`, p.Title, p.Slug, p.AuthorID, p.PublishDate, p.ID)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}

	if replaceBlocks {
		if _, err := tx.Exec(`DELETE FROM blocks WHERE page_id = $1`, p.ID); err != nil {
			return fmt.Errorf("delete blocks: %w", err)
		}
		if err := insertBlocks(tx, p.ID, set); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update page: commit: %w", err)
	}
	return nil
}

// Delete removes a page by ID. The blocks go with it through the
// ON DELETE CASCADE constraint, atomically at the database level.
func (s *PageStore) Delete(id uuid.UUID) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete page: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete page: rows affected: %w", err)
	}
	return n, nil
}

// insertBlocks writes a block set for a page inside an open transaction.
func insertBlocks(tx *sql.Tx, pageID uuid.UUID, set []models.Block) error {
	if len(set) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`
		INSERT INTO blocks (page_id, type, position, content)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("prepare block insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range set {
		if _, err := stmt.Exec(pageID, b.Type, b.Position, b.Content); err != nil {
			return fmt.Errorf("insert block at position %d: %w", b.Position, err)
		}
	}
	return nil
}
