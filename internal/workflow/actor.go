// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package workflow

import (
	"github.com/google/uuid"

	"blockcms/internal/models"
)

// Actor is the authenticated identity an operation runs as, taken from
// the session. The zero Actor is anonymous and passes no policy check.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// IsAdmin returns true if the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanOperate is the authorization policy applied uniformly to page edit,
// page delete, and author visibility: admins may operate on anything,
// authors only on resources they own.
func (a Actor) CanOperate(authorID uuid.UUID) bool {
	return a.IsAdmin() || (a.ID != uuid.Nil && a.ID == authorID)
}
