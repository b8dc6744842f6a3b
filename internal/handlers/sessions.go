// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"

	"blockcms/internal/middleware"
	"blockcms/internal/session"
	"blockcms/internal/store"
)

// Sessions groups the login, logout, and current-session handlers.
type Sessions struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewSessions creates a new Sessions handler group.
func NewSessions(sessions *session.Store, userStore *store.UserStore) *Sessions {
	return &Sessions{sessions: sessions, userStore: userStore}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TOTPCode string `json:"totpCode"`
}

// userResponse is the identity payload returned by login and Current.
type userResponse struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Login authenticates by email and password, plus a TOTP code for users
// with an enabled second factor, and issues a session cookie.
func (h *Sessions) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, err := h.userStore.FindByEmail(req.Username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Same response for a missing user and a wrong password.
	if user == nil || !h.userStore.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			respondError(w, http.StatusUnauthorized, "TOTP code required")
			return
		}
		if user.TOTPSecret == nil || !totp.Validate(req.TOTPCode, *user.TOTPSecret) {
			respondError(w, http.StatusUnauthorized, "Invalid TOTP code")
			return
		}
	}

	_, err = h.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		TwoFADone:   user.TOTPEnabled,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("user logged in", "email", user.Email, "role", user.Role)
	respondJSON(w, http.StatusOK, userResponse{
		Username: user.Email,
		Name:     user.DisplayName,
		Role:     string(user.Role),
	})
}

// Logout destroys the current session and clears the cookie.
func (h *Sessions) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Current returns the authenticated identity behind the session cookie.
func (h *Sessions) Current(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, userResponse{
		Username: sess.Email,
		Name:     sess.DisplayName,
		Role:     string(sess.Role),
	})
}
