package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go-blog-app/internal/data"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"go-blog-app/internal/session"
	"go-blog-app/internal/view"

	"github.com/go-chi/chi/v5"
)

// MessageHandler holds the dependencies for the contact form and the admin
// message inbox.
type MessageHandler struct {
	messages *service.MessageService
	view     *view.View
	sm       session.Manager
}

// NewMessageHandler creates a new MessageHandler with the given dependencies.
func NewMessageHandler(messages *service.MessageService, v *view.View, sm session.Manager) *MessageHandler {
	return &MessageHandler{messages: messages, view: v, sm: sm}
}

// contactForm renders the public contact page.
func (h *MessageHandler) contactForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.view.Render(w, r, "contact.html", nil); err != nil {
		return middleware.StoreError(err, "/")
	}
	return nil
}

// contactSubmit records a contact message from any visitor.
func (h *MessageHandler) contactSubmit(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	_, err := h.messages.Submit(r.Context(),
		r.FormValue("name"),
		r.FormValue("email"),
		r.FormValue("message"))
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			return middleware.ValidationError("All fields are required.", "/contact")
		}
		return middleware.StoreError(err, "/contact")
	}

	h.flash(r, "Message sent successfully!", "success")
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
	return nil
}

// inbox renders the admin message listing, newest first.
func (h *MessageHandler) inbox(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	msgs, err := h.messages.List(r.Context())
	if err != nil {
		return middleware.StoreError(err, "/admin/dashboard")
	}
	unread, err := h.messages.UnreadCount(r.Context())
	if err != nil {
		return middleware.StoreError(err, "/admin/dashboard")
	}

	pageData := map[string]interface{}{
		"Messages":    msgs,
		"UnreadCount": unread,
	}
	if err := h.view.Render(w, r, "messages.html", pageData); err != nil {
		return middleware.StoreError(err, "/admin/dashboard")
	}
	return nil
}

// toggleRead flips the read flag of one message.
func (h *MessageHandler) toggleRead(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return middleware.NotFoundError("Message not found.", "/admin/messages")
	}

	if err := h.messages.ToggleRead(r.Context(), id); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return middleware.NotFoundError("Message not found.", "/admin/messages")
		}
		return middleware.StoreError(err, "/admin/messages")
	}

	http.Redirect(w, r, "/admin/messages", http.StatusSeeOther)
	return nil
}

// markAllRead clears the unread flag on every message.
func (h *MessageHandler) markAllRead(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.messages.MarkAllRead(r.Context()); err != nil {
		return middleware.StoreError(err, "/admin/messages")
	}

	h.flash(r, "All messages marked as read.", "success")
	http.Redirect(w, r, "/admin/messages", http.StatusSeeOther)
	return nil
}

// deleteMessage removes one message.
func (h *MessageHandler) deleteMessage(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return middleware.NotFoundError("Message not found.", "/admin/messages")
	}

	if err := h.messages.Delete(r.Context(), id); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return middleware.NotFoundError("Message not found.", "/admin/messages")
		}
		return middleware.StoreError(err, "/admin/messages")
	}

	h.flash(r, "Message deleted successfully!", "success")
	http.Redirect(w, r, "/admin/messages", http.StatusSeeOther)
	return nil
}

func (h *MessageHandler) flash(r *http.Request, message, flashType string) {
	h.sm.Put(r.Context(), session.KeyFlash, message)
	h.sm.Put(r.Context(), session.KeyFlashType, flashType)
}
