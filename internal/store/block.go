// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blockcms/internal/models"
)

// BlockStore reads a page's blocks. All block writes go through the
// PageStore transactions, so blocks can never drift from their page.
type BlockStore struct {
	db *sql.DB
}

// NewBlockStore creates a new BlockStore with the given database connection.
func NewBlockStore(db *sql.DB) *BlockStore {
	return &BlockStore{db: db}
}

// ListByPage returns a page's blocks in position order.
func (s *BlockStore) ListByPage(pageID uuid.UUID) ([]models.Block, error) {
	rows, err := s.db.Query(`
		SELECT id, page_id, type, position, content, created_at
		FROM blocks
		WHERE page_id = $1
		ORDER BY position ASC
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var out []models.Block
	for rows.Next() {
		var b models.Block
		if err := rows.Scan(&b.ID, &b.PageID, &b.Type, &b.Position, &b.Content, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
