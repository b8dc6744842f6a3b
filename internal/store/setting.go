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

// SettingStore manages site configuration in the database. Every setting
// records the user who last changed it.
type SettingStore struct {
	db *sql.DB
}

// NewSettingStore returns a new SettingStore backed by the given database.
func NewSettingStore(db *sql.DB) *SettingStore {
	return &SettingStore{db: db}
}

// Get returns a single setting by key together with its last editor's
// name and email. Returns nil if the key does not exist.
func (s *SettingStore) Get(key string) (*models.Setting, error) {
	setting := &models.Setting{}
	err := s.db.QueryRow(`
		SELECT s.key, s.value, s.updated_by, u.display_name, u.email, s.updated_at
		FROM settings s
		JOIN users u ON u.id = s.updated_by
		WHERE s.key = $1
	`, key).Scan(
		&setting.Key, &setting.Value, &setting.UpdatedBy,
		&setting.EditorName, &setting.EditorEmail, &setting.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return setting, nil
}

// Set upserts a setting value and records the editing user. Returns the
// number of rows changed.
func (s *SettingStore) Set(key, value string, editorID uuid.UUID) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_by, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
	`, key, value, editorID)
	if err != nil {
		return 0, fmt.Errorf("set setting: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set setting: rows affected: %w", err)
	}
	return n, nil
}
