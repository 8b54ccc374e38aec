package middleware

import (
	"context"
	"errors"
	"net/http"

	"go-blog-app/internal/data"
	"go-blog-app/internal/session"
)

// UserGetter is the slice of the user repository the guards need.
type UserGetter interface {
	GetUserByID(ctx context.Context, id int64) (*data.User, error)
}

// LoadIdentity binds the session-carried identity to the request context so
// handlers and templates can read it without touching the session directly.
func LoadIdentity(sm session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := &Identity{
				UserID:   sm.GetInt64(r.Context(), session.KeyUserID),
				Username: sm.GetString(r.Context(), session.KeyUsername),
				IsAdmin:  sm.GetBool(r.Context(), session.KeyIsAdmin),
			}
			next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), id)))
		})
	}
}

// RequireSession rejects requests with no identity bound to the session.
func RequireSession(sm session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetIdentity(r.Context()).Authenticated() {
				appErr := AuthRequiredError()
				sm.Put(r.Context(), session.KeyFlash, appErr.Message)
				sm.Put(r.Context(), session.KeyFlashType, appErr.flashType())
				http.Redirect(w, r, appErr.target(), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests whose identity is missing or not an admin.
// The admin flag is re-checked against the user store on every request rather
// than trusted from the session copy; a stale or deleted account loses access
// immediately and the session is destroyed.
func RequireAdmin(sm session.Manager, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r.Context())
			if !id.Authenticated() {
				appErr := AuthRequiredError()
				sm.Put(r.Context(), session.KeyFlash, appErr.Message)
				sm.Put(r.Context(), session.KeyFlashType, appErr.flashType())
				http.Redirect(w, r, appErr.target(), http.StatusSeeOther)
				return
			}

			user, err := users.GetUserByID(r.Context(), id.UserID)
			if err != nil {
				if errors.Is(err, data.ErrNotFound) {
					// Account gone; the session is no longer meaningful.
					_ = sm.Destroy(r.Context())
				}
				appErr := ForbiddenError()
				sm.Put(r.Context(), session.KeyFlash, appErr.Message)
				sm.Put(r.Context(), session.KeyFlashType, appErr.flashType())
				http.Redirect(w, r, appErr.target(), http.StatusSeeOther)
				return
			}

			if !user.IsAdmin {
				appErr := ForbiddenError()
				sm.Put(r.Context(), session.KeyFlash, appErr.Message)
				sm.Put(r.Context(), session.KeyFlashType, appErr.flashType())
				http.Redirect(w, r, appErr.target(), http.StatusSeeOther)
				return
			}

			// Refresh the context identity from the authoritative row.
			refreshed := &Identity{UserID: user.ID, Username: user.Username, IsAdmin: true}
			next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), refreshed)))
		})
	}
}
