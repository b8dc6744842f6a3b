// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"blockcms/internal/middleware"
	"blockcms/internal/store"
)

// Settings groups the site setting read and write handlers.
type Settings struct {
	settingStore *store.SettingStore
}

// NewSettings creates a new Settings handler group.
func NewSettings(settingStore *store.SettingStore) *Settings {
	return &Settings{settingStore: settingStore}
}

type settingEditor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type settingResponse struct {
	Key       string        `json:"key"`
	Value     string        `json:"value"`
	Editor    settingEditor `json:"editor"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Get returns a setting by key together with who last changed it.
func (h *Settings) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	setting, err := h.settingStore.Get(key)
	if err != nil {
		slog.Error("get setting failed", "key", key, "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if setting == nil {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}

	respondJSON(w, http.StatusOK, settingResponse{
		Key:       setting.Key,
		Value:     setting.Value,
		Editor:    settingEditor{Name: setting.EditorName, Email: setting.EditorEmail},
		UpdatedAt: setting.UpdatedAt,
	})
}

type settingUpdateRequest struct {
	Value string `json:"value"`
}

// Set upserts a setting value, recording the acting admin as the editor.
func (h *Settings) Set(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	sess := middleware.SessionFromCtx(r.Context())

	var req settingUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		respondError(w, http.StatusBadRequest, "Value must not be empty")
		return
	}

	if _, err := h.settingStore.Set(key, req.Value, sess.UserID); err != nil {
		slog.Error("set setting failed", "key", key, "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	setting, err := h.settingStore.Get(key)
	if err != nil || setting == nil {
		slog.Error("reload setting failed", "key", key, "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("setting updated", "key", key, "by", sess.Email)
	respondJSON(w, http.StatusOK, settingResponse{
		Key:       setting.Key,
		Value:     setting.Value,
		Editor:    settingEditor{Name: setting.EditorName, Email: setting.EditorEmail},
		UpdatedAt: setting.UpdatedAt,
	})
}
