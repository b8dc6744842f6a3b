// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PageStatus is the derived publication state of a page. It is computed
// from the publish date on every read and never stored, so a scheduled
// page becomes published the day its date arrives without any write.
type PageStatus string

const (
	StatusDraft     PageStatus = "draft"
	StatusScheduled PageStatus = "scheduled"
	StatusPublished PageStatus = "published"
)

// Page represents a titled, author-owned document rendered from an
// ordered list of blocks. Slug and status are server-derived; clients
// can never set them directly.
type Page struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	CreationDate time.Time  `json:"-"` // Date-only; set once at creation
	PublishDate  *time.Time `json:"-"` // Date-only; nil means draft
	AuthorID     uuid.UUID  `json:"-"` // Visibility depends on the viewer
	AuthorName   string     `json:"author"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Status derives the page's publication state against the current date.
func (p *Page) Status() PageStatus {
	return StatusOn(p.PublishDate, time.Now())
}

// StatusOn derives the publication state of a publish date as seen on a
// given day. Comparison is date-only: a page publishing today is already
// published, whatever the time of day.
func StatusOn(publish *time.Time, today time.Time) PageStatus {
	if publish == nil {
		return StatusDraft
	}
	if !DateOf(*publish).After(DateOf(today)) {
		return StatusPublished
	}
	return StatusScheduled
}

// DateOf reduces a timestamp to its calendar date as midnight UTC.
// Database DATE values scan as midnight UTC while the clock and parsed
// input run in the server's zone; normalizing both sides makes every
// comparison a calendar-date comparison regardless of location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
