// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"io/fs"
	"log/slog"
	"net/http"
)

// Assets lists the embedded static images available to image blocks.
type Assets struct {
	staticFS fs.FS
}

// NewAssets creates a new Assets handler over the embedded static tree.
func NewAssets(staticFS fs.FS) *Assets {
	return &Assets{staticFS: staticFS}
}

// List returns the /static/ paths of every embedded image, for use as
// image block content.
func (h *Assets) List(w http.ResponseWriter, r *http.Request) {
	var paths []string
	err := fs.WalkDir(h.staticFS, "static/images", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, "/"+path)
		}
		return nil
	})
	if err != nil {
		slog.Error("walk static assets failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"assets": paths})
}
