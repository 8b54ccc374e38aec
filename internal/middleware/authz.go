package middleware

import (
	"net/http"

	"go-blog-app/internal/session"

	"github.com/casbin/casbin/v2"
)

// Authorizer creates a middleware that enforces the route policy with Casbin.
// The subject is the visitor's role derived from the session: anonymous,
// user, or admin. Role inheritance in the policy lets each level reach
// everything below it.
func Authorizer(e *casbin.Enforcer, sm session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := "anonymous"
			if sm.GetInt64(r.Context(), session.KeyUserID) != 0 {
				subject = "user"
				if sm.GetBool(r.Context(), session.KeyIsAdmin) {
					subject = "admin"
				}
			}

			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				http.Error(w, "Authorization error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				// An anonymous visitor gets sent to login; everyone else is
				// simply not allowed here.
				var appErr *AppError
				if subject == "anonymous" {
					appErr = AuthRequiredError()
				} else {
					appErr = ForbiddenError()
				}
				sm.Put(r.Context(), session.KeyFlash, appErr.Message)
				sm.Put(r.Context(), session.KeyFlashType, appErr.flashType())
				http.Redirect(w, r, appErr.target(), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
