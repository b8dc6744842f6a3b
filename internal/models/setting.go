// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// SettingKeyTitle is the key of the site-wide title setting.
const SettingKeyTitle = "title"

// Setting represents a single site configuration key-value pair together
// with the user who last changed it.
type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	UpdatedBy   uuid.UUID `json:"-"`
	EditorName  string    `json:"-"`
	EditorEmail string    `json:"-"`
	UpdatedAt   time.Time `json:"updated_at"`
}
