package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"time"

	"go-blog-app/internal/auth"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"go-blog-app/internal/session"
	"go-blog-app/internal/view"
)

// AccountHandler holds the dependencies for registration, login and logout.
type AccountHandler struct {
	accounts *service.AccountService
	view     *view.View
	sm       session.Manager
	sso      *auth.Authenticator
}

// NewAccountHandler creates a new AccountHandler. The authenticator may be
// nil when single sign-on is disabled.
func NewAccountHandler(accounts *service.AccountService, v *view.View, sm session.Manager, sso *auth.Authenticator) *AccountHandler {
	return &AccountHandler{accounts: accounts, view: v, sm: sm, sso: sso}
}

// registerForm renders the registration page.
func (h *AccountHandler) registerForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.view.Render(w, r, "register.html", nil); err != nil {
		return middleware.StoreError(err, "/")
	}
	return nil
}

// register handles the registration form submission.
func (h *AccountHandler) register(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	_, err := h.accounts.Register(r.Context(),
		r.FormValue("username"),
		r.FormValue("email"),
		r.FormValue("password"),
		r.FormValue("confirm_password"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			return middleware.ValidationError("All fields are required.", "/register")
		case errors.Is(err, service.ErrPasswordMismatch):
			return middleware.ValidationError("Passwords do not match.", "/register")
		case errors.Is(err, service.ErrUsernameTaken):
			return middleware.ValidationError("Username already taken.", "/register")
		case errors.Is(err, service.ErrEmailTaken):
			return middleware.ValidationError("Email already registered.", "/register")
		default:
			return middleware.StoreError(err, "/register")
		}
	}

	h.flash(r, "Registered successfully. Please login.", "success")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return nil
}

// loginForm renders the login page.
func (h *AccountHandler) loginForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	data := map[string]interface{}{
		"SSOEnabled": h.sso != nil,
	}
	if err := h.view.Render(w, r, "login.html", data); err != nil {
		return middleware.StoreError(err, "/")
	}
	return nil
}

// login handles the login form submission. Unknown usernames and wrong
// passwords produce the same message.
func (h *AccountHandler) login(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user, err := h.accounts.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return middleware.ValidationError("Invalid username or password.", "/login")
		}
		return middleware.StoreError(err, "/login")
	}

	h.bindSession(r, user.ID, user.Username, user.IsAdmin)
	h.flash(r, "Login successful!", "success")
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}

// logout clears all session state unconditionally.
func (h *AccountHandler) logout(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.sm.Destroy(r.Context()); err != nil {
		return middleware.StoreError(err, "/")
	}
	h.flash(r, "Logged out successfully.", "success")
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}

// ssoLogin redirects the user to the OIDC provider. A random state string in
// a short-lived cookie protects the callback against CSRF.
func (h *AccountHandler) ssoLogin(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	state, err := randString(16)
	if err != nil {
		return middleware.StoreError(err, "/login")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "state",
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
	})
	http.Redirect(w, r, h.sso.AuthCodeURL(state), http.StatusFound)
	return nil
}

// ssoCallback is the redirect URL for the OIDC provider. A verified ID token
// finds or provisions the local account and binds the normal session.
func (h *AccountHandler) ssoCallback(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	stateCookie, err := r.Cookie("state")
	if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
		return middleware.ValidationError("Login attempt could not be verified. Please try again.", "/login")
	}

	oauth2Token, err := h.sso.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		return middleware.StoreError(err, "/login")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return middleware.StoreError(errors.New("no id_token field in oauth2 token"), "/login")
	}

	// The OIDC library checks the nonce, issuer, audience, and expiry.
	idToken, err := h.sso.IDTokenVerifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		return middleware.StoreError(err, "/login")
	}

	var claims struct {
		Email             string `json:"email"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return middleware.StoreError(err, "/login")
	}

	user, err := h.accounts.ProvisionSSOUser(r.Context(), claims.Email, claims.PreferredUsername)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			return middleware.ValidationError("The identity provider did not supply an email address.", "/login")
		}
		return middleware.StoreError(err, "/login")
	}

	h.bindSession(r, user.ID, user.Username, user.IsAdmin)
	h.flash(r, "Login successful!", "success")
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}

func (h *AccountHandler) bindSession(r *http.Request, userID int64, username string, isAdmin bool) {
	// A fresh token on privilege change prevents session fixation.
	_ = h.sm.RenewToken(r.Context())
	h.sm.Put(r.Context(), session.KeyUserID, userID)
	h.sm.Put(r.Context(), session.KeyUsername, username)
	h.sm.Put(r.Context(), session.KeyIsAdmin, isAdmin)
}

func (h *AccountHandler) flash(r *http.Request, message, flashType string) {
	h.sm.Put(r.Context(), session.KeyFlash, message)
	h.sm.Put(r.Context(), session.KeyFlashType, flashType)
}

// randString generates a random URL-safe string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
