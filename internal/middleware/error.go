package middleware

import (
	"fmt"
	"net/http"

	"go-blog-app/internal/logger"
	"go-blog-app/internal/session"
)

// Kind classifies a handler failure and picks its default redirect target.
type Kind int

const (
	// KindAuthRequired means no identity is bound to the session.
	KindAuthRequired Kind = iota + 1
	// KindForbidden means the identity lacks the admin flag.
	KindForbidden
	// KindValidation means the submitted form was rejected.
	KindValidation
	// KindNotFound means the requested post or message does not exist.
	KindNotFound
	// KindStore means the persistence layer failed.
	KindStore
)

// AppError represents a handler failure. The Message is shown to the user as
// a flash notice; Err is only ever logged.
type AppError struct {
	Err      error
	Kind     Kind
	Message  string
	Redirect string
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// AuthRequiredError builds the failure for a missing session.
func AuthRequiredError() *AppError {
	return &AppError{Kind: KindAuthRequired, Message: "Please login first."}
}

// ForbiddenError builds the failure for a non-admin on an admin route.
func ForbiddenError() *AppError {
	return &AppError{Kind: KindForbidden, Message: "Admin access required."}
}

// ValidationError builds a form rejection that sends the user back to the
// originating form.
func ValidationError(message, redirect string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Redirect: redirect}
}

// NotFoundError builds the failure for an unknown post or message id.
func NotFoundError(message, redirect string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Redirect: redirect}
}

// StoreError wraps a persistence failure. The user only ever sees the
// generic message.
func StoreError(err error, redirect string) *AppError {
	return &AppError{Err: err, Kind: KindStore, Message: "Something went wrong. Please try again.", Redirect: redirect}
}

// target resolves where the failed request should land.
func (e *AppError) target() string {
	if e.Redirect != "" {
		return e.Redirect
	}
	switch e.Kind {
	case KindAuthRequired:
		return "/login"
	default:
		return "/"
	}
}

// flashType maps error kinds onto the flash styling classes.
func (e *AppError) flashType() string {
	if e.Kind == KindValidation {
		return "warning"
	}
	return "error"
}

// Error is a middleware that converts handler errors into a flash notice and
// a redirect. The underlying error is logged but never shown to the client.
func Error(log logger.Logger, sm session.Manager) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					appErr := StoreError(err, "/")
					sm.Put(r.Context(), session.KeyFlash, appErr.Message)
					sm.Put(r.Context(), session.KeyFlashType, appErr.flashType())
					http.Redirect(w, r, appErr.target(), http.StatusSeeOther)
				}
			}()

			appErr := next(w, r)
			if appErr != nil {
				if appErr.Err != nil {
					log.Error(appErr.Err, appErr.Message)
				}
				sm.Put(r.Context(), session.KeyFlash, appErr.Message)
				sm.Put(r.Context(), session.KeyFlashType, appErr.flashType())
				http.Redirect(w, r, appErr.target(), http.StatusSeeOther)
			}
		})
	}
}
