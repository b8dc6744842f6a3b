package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: an admin,
// two authors, the site title setting, and a sample published page.
// No-op if users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	users := []struct {
		email, password, name, role string
	}{
		{"admin@blockcms.local", "admin", "Admin", "admin"},
		{"alice@blockcms.local", "password", "Alice", "author"},
		{"bob@blockcms.local", "password", "Bob", "author"},
	}

	var adminID string
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed bcrypt: %w", err)
		}

		var id string
		err = db.QueryRow(`
			INSERT INTO users (email, password_hash, display_name, role)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, u.email, string(hash), u.name, u.role).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert user %s: %w", u.email, err)
		}
		if u.role == "admin" {
			adminID = id
		}
	}

	if _, err := db.Exec(`
		INSERT INTO settings (key, value, updated_by)
		VALUES ('title', 'BlockCMS', $1)
	`, adminID); err != nil {
		return fmt.Errorf("seed title setting: %w", err)
	}

	// A published sample page owned by the admin.
	var pageID string
	err := db.QueryRow(`
		INSERT INTO pages (title, slug, author_id, creation_date, publish_date)
		VALUES ('Welcome', 'welcome', $1, CURRENT_DATE, CURRENT_DATE)
		RETURNING id
	`, adminID).Scan(&pageID)
	if err != nil {
		return fmt.Errorf("seed sample page: %w", err)
	}

	sampleBlocks := []struct {
		typ, content string
	}{
		{"header", "Welcome to BlockCMS"},
		{"paragraph", "This page was created by the development seed."},
		{"image", "/static/images/logo.svg"},
	}
	for i, b := range sampleBlocks {
		if _, err := db.Exec(`
			INSERT INTO blocks (page_id, type, position, content)
			VALUES ($1, $2, $3, $4)
		`, pageID, b.typ, i+1, b.content); err != nil {
			return fmt.Errorf("seed sample block: %w", err)
		}
	}

	slog.Info("database seeded with development data",
		"admin", "admin@blockcms.local",
		"password", "admin",
	)
	return nil
}
