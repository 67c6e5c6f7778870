// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"efoodadmin/internal/efood"
	"efoodadmin/internal/middleware"
	"efoodadmin/internal/render"
	"efoodadmin/internal/session"
)

// Auth groups all authentication-related HTTP handlers. Credentials and
// OTP codes are checked by the upstream API; the dashboard only keeps the
// resulting token in its session.
type Auth struct {
	api      *efood.Client
	sessions SessionStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(api *efood.Client, sessions SessionStore) *Auth {
	return &Auth{api: api, sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpRequest struct {
	OTP string `json:"otp"`
}

// meResponse describes the signed-in user to the dashboard.
type meResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	OTPRequired bool   `json:"otpRequired"`
	CSRFToken   string `json:"csrfToken,omitempty"`
}

func newMeResponse(r *http.Request, sess *session.Data) meResponse {
	return meResponse{
		ID:          sess.UserID,
		Email:       sess.Email,
		Name:        sess.Name,
		Role:        sess.Role,
		OTPRequired: sess.OTPPending,
		CSRFToken:   middleware.CSRFTokenFromCtx(r.Context()),
	}
}

// dashboardRoles are the upstream roles allowed to sign in.
var dashboardRoles = map[string]bool{
	efood.RoleAdmin:  true,
	efood.RoleVendor: true,
}

// resolveIdentity fills the user id and role from the login response,
// falling back to the token's claims.
func resolveIdentity(res *efood.LoginResult) (int64, string) {
	id, _ := res.User.ID.Int64()
	role := res.Role

	if res.Token != "" && (id == 0 || role == "") {
		if claims, err := efood.ParseToken(res.Token); err == nil {
			if id == 0 {
				id, _ = strconv.ParseInt(claims.Subject, 10, 64)
			}
			if role == "" {
				role = claims.Role
			}
		}
	}
	return id, role
}

// Login checks credentials upstream and starts a session. When the
// upstream requires an OTP, the session starts in the pending state.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if msg := validateLogin(req.Email, req.Password); msg != "" {
		render.Error(w, http.StatusUnprocessableEntity, msg)
		return
	}

	res, err := a.api.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if efood.IsUnauthorized(err) {
			render.Error(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		render.Upstream(w, err)
		return
	}

	a.startSession(w, r, req.Email, res)
}

// startSession turns a login result into a session and responds with the
// signed-in identity.
func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, email string, res *efood.LoginResult) {
	id, role := resolveIdentity(res)
	if !res.OTPRequired && !dashboardRoles[role] {
		slog.Warn("login rejected for role", "email", email, "role", role)
		render.Error(w, http.StatusForbidden, "This account cannot access the dashboard.")
		return
	}
	if !res.OTPRequired && res.Token == "" {
		render.Error(w, http.StatusBadGateway, "The eFood API did not return a token.")
		return
	}

	name := res.User.Name
	if res.User.Email != "" {
		email = res.User.Email
	}
	data := &session.Data{
		UserID:     id,
		Email:      email,
		Name:       name,
		Role:       role,
		APIToken:   res.Token,
		OTPPending: res.OTPRequired,
	}

	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		if errors.Is(err, session.ErrTokenExpired) {
			render.Error(w, http.StatusUnauthorized, "The eFood API returned an expired token.")
			return
		}
		slog.Error("session create failed", "error", err)
		render.Error(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	slog.Info("user signed in", "user_id", id, "role", role, "otp_pending", res.OTPRequired)
	render.JSON(w, http.StatusOK, newMeResponse(r, data))
}

// VerifyOTP completes a pending login with the one-time password.
func (a *Auth) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		render.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if !sess.OTPPending {
		render.JSON(w, http.StatusOK, newMeResponse(r, sess))
		return
	}

	var req otpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if msg := validateOTP(req.OTP); msg != "" {
		render.Error(w, http.StatusUnprocessableEntity, msg)
		return
	}

	res, err := a.api.VerifyOTP(r.Context(), sess.Email, strings.TrimSpace(req.OTP))
	if err != nil {
		if efood.IsUnauthorized(err) {
			render.Error(w, http.StatusUnauthorized, "Invalid or expired code.")
			return
		}
		render.Upstream(w, err)
		return
	}
	if res.Token == "" {
		render.Error(w, http.StatusBadGateway, "The eFood API did not return a token.")
		return
	}

	id, role := resolveIdentity(res)
	if !dashboardRoles[role] {
		a.sessions.Destroy(r.Context(), w, r)
		render.Error(w, http.StatusForbidden, "This account cannot access the dashboard.")
		return
	}

	sess.APIToken = res.Token
	sess.Role = role
	sess.OTPPending = false
	if id != 0 {
		sess.UserID = id
	}
	if res.User.Name != "" {
		sess.Name = res.User.Name
	}

	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		render.Error(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	slog.Info("otp verified", "user_id", sess.UserID)
	render.JSON(w, http.StatusOK, newMeResponse(r, sess))
}

// Logout revokes the token upstream (best-effort) and ends the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.APIToken != "" {
		if err := a.api.Logout(r.Context(), sess.APIToken); err != nil {
			slog.Warn("upstream logout failed", "user_id", sess.UserID, "error", err)
		}
	}

	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in identity.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		render.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	render.JSON(w, http.StatusOK, newMeResponse(r, sess))
}
