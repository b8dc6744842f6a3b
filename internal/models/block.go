// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// BlockType identifies the kind of content a block holds.
type BlockType string

const (
	BlockHeader    BlockType = "header"
	BlockParagraph BlockType = "paragraph"
	BlockImage     BlockType = "image"
)

// Valid reports whether the block type is one of the known values.
func (t BlockType) Valid() bool {
	return t == BlockHeader || t == BlockParagraph || t == BlockImage
}

// IsContent reports whether the block counts as a content block for the
// page composition rule (every page needs a header and a content block).
func (t BlockType) IsContent() bool {
	return t == BlockParagraph || t == BlockImage
}

// Block is one content unit within a page. Positions of a page's blocks
// always form a contiguous run 1..N; the store enforces this with a
// UNIQUE(page_id, position) constraint and a positivity CHECK.
type Block struct {
	ID        uuid.UUID `json:"id"`
	PageID    uuid.UUID `json:"page_id"`
	Type      BlockType `json:"type"`
	Position  int       `json:"position"`
	Content   string    `json:"content"` // For image blocks, a static asset path
	CreatedAt time.Time `json:"created_at"`
}
