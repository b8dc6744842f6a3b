// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"blockcms/internal/middleware"
	"blockcms/internal/store"
)

// Users groups the user listing and TOTP enrollment handlers.
type Users struct {
	userStore *store.UserStore
	issuer    string
}

// NewUsers creates a new Users handler group. The issuer names this site
// in authenticator apps.
func NewUsers(userStore *store.UserStore, issuer string) *Users {
	return &Users{userStore: userStore, issuer: issuer}
}

// List returns every user. Admin only; password hashes never leave the
// store layer's struct tags.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userStore.List()
	if err != nil {
		slog.Error("list users failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type totpEnrollResponse struct {
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauthUrl"`
	QRCode     string `json:"qrCode"` // PNG data URI for the enrollment QR
}

// BeginTOTP generates a fresh TOTP secret for the current user and
// returns the otpauth URL plus a QR code to scan. The second factor is
// not required until VerifyTOTP confirms a code.
func (h *Users) BeginTOTP(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      h.issuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("totp qr encode failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, totpEnrollResponse{
		Secret:     key.Secret(),
		OtpauthURL: key.URL(),
		QRCode:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}

type totpVerifyRequest struct {
	Code string `json:"code"`
}

// VerifyTOTP checks a code against the pending secret and, on success,
// turns the second factor on for the current user.
func (h *Users) VerifyTOTP(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req totpVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, err := h.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("totp verify lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user.TOTPSecret == nil {
		respondError(w, http.StatusBadRequest, "TOTP enrollment not started")
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		respondError(w, http.StatusUnauthorized, "Invalid TOTP code")
		return
	}

	if err := h.userStore.EnableTOTP(sess.UserID); err != nil {
		slog.Error("enable totp failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("totp enabled", "email", sess.Email)
	respondJSON(w, http.StatusOK, map[string]bool{"enabled": true})
}
