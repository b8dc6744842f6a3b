// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package workflow

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced page or setting does not
	// exist. Distinct from ErrForbidden so handlers can answer 404 vs 403.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned on authorization failures. Deliberately
	// generic; callers get no detail on what would have been allowed.
	ErrForbidden = errors.New("operation not permitted")
)

// FieldError describes a single validation failure on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every validation failure of a submission so
// the caller gets an itemized list instead of the first problem found.
// Nothing is written when a ValidationError is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// add appends a failure to the list.
func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// ok reports whether no failures were collected.
func (e *ValidationError) ok() bool {
	return len(e.Fields) == 0
}
