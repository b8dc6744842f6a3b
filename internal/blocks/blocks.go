// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blocks implements the staged editing sequence for a page's
// content blocks. A Sequence holds the working set of blocks in display
// order, each tagged with a lifecycle state, and maintains the invariant
// that positions always form a contiguous run 1..N. Commit resolves the
// staging and produces the authoritative, renumbered block set that the
// workflow persists.
package blocks

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"blockcms/internal/models"
)

// State is the lifecycle marker of a staged block.
type State int

const (
	// Unmodified is a persisted block with no staged changes.
	Unmodified State = iota
	// Edited is a persisted block with staged changes, or a confirmed new block.
	Edited
	// Inserted is a new block that has not been confirmed yet.
	Inserted
	// PendingDelete is a persisted block staged for removal.
	PendingDelete
)

// String returns the lowercase name of the state, as used on the wire.
func (s State) String() string {
	switch s {
	case Unmodified:
		return "unmodified"
	case Edited:
		return "edited"
	case Inserted:
		return "inserted"
	case PendingDelete:
		return "pending_delete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ParseState maps a wire value to a State. The empty string means
// unmodified, so plain block submissions need no staging markers.
func ParseState(s string) (State, error) {
	switch s {
	case "", "unmodified":
		return Unmodified, nil
	case "edited":
		return Edited, nil
	case "inserted":
		return Inserted, nil
	case "pending_delete":
		return PendingDelete, nil
	default:
		return Unmodified, fmt.Errorf("unknown block state %q", s)
	}
}

// Staged couples a block with its lifecycle state.
type Staged struct {
	Block models.Block
	State State
}

// Sequence is the staged working set of a page's blocks, kept sorted by
// position. Blocks staged for deletion still occupy their position until
// they are removed from the working set.
type Sequence struct {
	items []Staged
}

// NewSequence builds a sequence from persisted blocks. The input is
// sorted by position and renumbered 1..N, so a sequence is always
// contiguous regardless of what the caller hands in.
func NewSequence(persisted []models.Block) *Sequence {
	items := make([]Staged, len(persisted))
	for i, b := range persisted {
		items[i] = Staged{Block: b, State: Unmodified}
	}
	return newSorted(items)
}

// NewStagedSequence builds a sequence from already-staged blocks, as
// submitted by an editing client. Relative order follows the submitted
// positions; the sequence renumbers them 1..N.
func NewStagedSequence(items []Staged) *Sequence {
	copied := make([]Staged, len(items))
	copy(copied, items)
	return newSorted(copied)
}

func newSorted(items []Staged) *Sequence {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Block.Position < items[j].Block.Position
	})
	for i := range items {
		items[i].Block.Position = i + 1
	}
	return &Sequence{items: items}
}

// Len returns the number of blocks in the working set, including blocks
// staged for deletion.
func (s *Sequence) Len() int {
	return len(s.items)
}

// Blocks returns a copy of the working set in position order.
func (s *Sequence) Blocks() []Staged {
	out := make([]Staged, len(s.items))
	copy(out, s.items)
	return out
}

// InsertAtHead stages a new empty block at position 1 and shifts every
// existing block down by one. The block stays Inserted until confirmed.
func (s *Sequence) InsertAtHead() {
	for i := range s.items {
		s.items[i].Block.Position++
	}
	head := Staged{
		Block: models.Block{Type: models.BlockParagraph, Position: 1},
		State: Inserted,
	}
	s.items = append([]Staged{head}, s.items...)
}

// Confirm resolves the block at the given position with its final type
// and content. An Inserted block becomes a confirmed part of the set; a
// persisted block gets a staged edit; a PendingDelete block is restored.
func (s *Sequence) Confirm(position int, typ models.BlockType, content string) error {
	idx, err := s.index(position)
	if err != nil {
		return err
	}
	if !typ.Valid() {
		return fmt.Errorf("unknown block type %q", typ)
	}
	if content == "" {
		return fmt.Errorf("block %d: content must not be empty", position)
	}

	s.items[idx].Block.Type = typ
	s.items[idx].Block.Content = content
	s.items[idx].State = Edited
	return nil
}

// MarkDeleted stages the block at the given position for removal. The
// block keeps its position in the working set until Remove drops it.
func (s *Sequence) MarkDeleted(position int) error {
	idx, err := s.index(position)
	if err != nil {
		return err
	}
	s.items[idx].State = PendingDelete
	return nil
}

// Restore clears a staged deletion, leaving the block Edited so the
// commit treats it as part of the authoritative set again.
func (s *Sequence) Restore(position int) error {
	idx, err := s.index(position)
	if err != nil {
		return err
	}
	if s.items[idx].State != PendingDelete {
		return fmt.Errorf("block %d is not marked for deletion", position)
	}
	s.items[idx].State = Edited
	return nil
}

// Remove drops the block at the given position from the working set and
// renumbers all subsequent positions down by one, closing the gap. Only
// never-persisted blocks and blocks already marked for deletion can be
// removed; a persisted block must be staged with MarkDeleted first.
func (s *Sequence) Remove(position int) error {
	idx, err := s.index(position)
	if err != nil {
		return err
	}

	item := s.items[idx]
	persisted := item.Block.ID != uuid.Nil
	if persisted && item.State != PendingDelete {
		return fmt.Errorf("block %d is persisted; mark it for deletion first", position)
	}

	s.items = append(s.items[:idx], s.items[idx+1:]...)
	for i := idx; i < len(s.items); i++ {
		s.items[i].Block.Position--
	}
	return nil
}

// Move swaps the block at the given position with its nearest neighbor
// in the given direction (+1 down, -1 up), skipping over neighbors that
// are staged for deletion. The move is refused if it would walk past
// either end of the sequence. Swapped blocks become Edited unless they
// already carry another staging state.
func (s *Sequence) Move(position, direction int) error {
	if direction != 1 && direction != -1 {
		return fmt.Errorf("direction must be +1 or -1, got %d", direction)
	}
	idx, err := s.index(position)
	if err != nil {
		return err
	}

	target := idx + direction
	for {
		if target < 0 || target >= len(s.items) {
			return errors.New("move refused: no neighbor in that direction")
		}
		if s.items[target].State != PendingDelete {
			break
		}
		target += direction
	}

	s.items[idx].Block.Position, s.items[target].Block.Position =
		s.items[target].Block.Position, s.items[idx].Block.Position
	if s.items[idx].State == Unmodified {
		s.items[idx].State = Edited
	}
	if s.items[target].State == Unmodified {
		s.items[target].State = Edited
	}

	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].Block.Position < s.items[j].Block.Position
	})
	return nil
}

// CommitError reports staged blocks that must be resolved before a
// page-level commit is accepted.
type CommitError struct {
	Inserted      int // new blocks never confirmed
	PendingDelete int // deletions never resolved
}

func (e *CommitError) Error() string {
	msg := "unresolved staged blocks:"
	if e.Inserted > 0 {
		msg += fmt.Sprintf(" %d unconfirmed new", e.Inserted)
	}
	if e.PendingDelete > 0 {
		msg += fmt.Sprintf(" %d marked for deletion", e.PendingDelete)
	}
	return msg
}

// Commit resolves the staging and returns the authoritative block set,
// renumbered 1..N in current relative order. It fails with a CommitError
// if any block is still Inserted (unconfirmed) or PendingDelete
// (unresolved); the caller must confirm or remove every staged block
// before a page-level update is accepted.
func (s *Sequence) Commit() ([]models.Block, error) {
	cerr := &CommitError{}
	for _, item := range s.items {
		switch item.State {
		case Inserted:
			cerr.Inserted++
		case PendingDelete:
			cerr.PendingDelete++
		}
	}
	if cerr.Inserted > 0 || cerr.PendingDelete > 0 {
		return nil, cerr
	}

	out := make([]models.Block, len(s.items))
	for i, item := range s.items {
		b := item.Block
		b.Position = i + 1
		out[i] = b
	}
	return out, nil
}

// ErrComposition is returned when a block set violates the page
// composition rule.
var ErrComposition = errors.New("a page requires at least one header block and at least one paragraph or image block")

// ValidateSet enforces the page composition rule over a full block set:
// at least one header block and at least one content (paragraph or
// image) block.
func ValidateSet(set []models.Block) error {
	var header, content bool
	for _, b := range set {
		if b.Type == models.BlockHeader {
			header = true
		} else if b.Type.IsContent() {
			content = true
		}
		if header && content {
			return nil
		}
	}
	return ErrComposition
}

// index translates a 1-based position into a slice index.
func (s *Sequence) index(position int) (int, error) {
	if position < 1 || position > len(s.items) {
		return 0, fmt.Errorf("position %d out of range 1..%d", position, len(s.items))
	}
	return position - 1, nil
}
