package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/media"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"go-blog-app/internal/session"
	"go-blog-app/internal/view"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes bounds the multipart form memory for image uploads.
const maxUploadBytes = 20 << 20 // 20MB

// PostHandler holds the dependencies for the public pages and the admin
// post management routes.
type PostHandler struct {
	posts    *service.PostService
	accounts *service.AccountService
	messages *service.MessageService
	view     *view.View
	sm       session.Manager
	log      logger.Logger
}

// NewPostHandler creates a new PostHandler with the given dependencies.
func NewPostHandler(posts *service.PostService, accounts *service.AccountService, messages *service.MessageService, v *view.View, sm session.Manager, log logger.Logger) *PostHandler {
	return &PostHandler{posts: posts, accounts: accounts, messages: messages, view: v, sm: sm, log: log}
}

// landing renders the public landing page with the newest posts.
func (h *PostHandler) landing(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	posts, err := h.posts.ListLanding(r.Context())
	if err != nil {
		// The landing page degrades to an empty listing rather than
		// bouncing the visitor somewhere else.
		h.log.Error(err, "Failed to load landing posts")
		posts = nil
	}
	if err := h.view.Render(w, r, "index.html", map[string]interface{}{"Posts": posts}); err != nil {
		return middleware.StoreError(err, "/")
	}
	return nil
}

// about renders the newest AboutMe post, or an empty state.
func (h *PostHandler) about(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	post, err := h.posts.AboutPost(r.Context())
	if err != nil {
		h.log.Error(err, "Failed to load about post")
		post = nil
	}
	if err := h.view.Render(w, r, "about.html", map[string]interface{}{"AboutPost": post}); err != nil {
		return middleware.StoreError(err, "/")
	}
	return nil
}

// viewPost renders a single post. Session required.
func (h *PostHandler) viewPost(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return middleware.NotFoundError("Post not found.", "/")
	}

	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return middleware.NotFoundError("Post not found.", "/")
		}
		return middleware.StoreError(err, "/")
	}

	if err := h.view.Render(w, r, "post.html", map[string]interface{}{"Post": post}); err != nil {
		return middleware.StoreError(err, "/")
	}
	return nil
}

// viewCategory renders all posts of one category. Session required.
func (h *PostHandler) viewCategory(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	// Category names contain spaces, so the path segment arrives escaped.
	category, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		return middleware.NotFoundError("Unknown category.", "/")
	}
	posts, err := h.posts.ListByCategory(r.Context(), category)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			return middleware.NotFoundError("Unknown category.", "/")
		}
		return middleware.StoreError(err, "/")
	}

	pageData := map[string]interface{}{
		"Posts":    posts,
		"Category": category,
	}
	if err := h.view.Render(w, r, "category.html", pageData); err != nil {
		return middleware.StoreError(err, "/")
	}
	return nil
}

// dashboard renders the admin dashboard: all posts plus store totals.
func (h *PostHandler) dashboard(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	posts, err := h.posts.ListAll(r.Context())
	if err != nil {
		return middleware.StoreError(err, "/")
	}
	totalPosts, err := h.posts.CountPosts(r.Context())
	if err != nil {
		return middleware.StoreError(err, "/")
	}
	totalMessages, err := h.messages.CountMessages(r.Context())
	if err != nil {
		return middleware.StoreError(err, "/")
	}
	unread, err := h.messages.UnreadCount(r.Context())
	if err != nil {
		return middleware.StoreError(err, "/")
	}
	totalUsers, err := h.accounts.CountUsers(r.Context())
	if err != nil {
		return middleware.StoreError(err, "/")
	}

	pageData := map[string]interface{}{
		"Posts":          posts,
		"TotalPosts":     totalPosts,
		"TotalMessages":  totalMessages,
		"UnreadMessages": unread,
		"TotalUsers":     totalUsers,
		"UnreadCount":    unread,
	}
	if err := h.view.Render(w, r, "dashboard.html", pageData); err != nil {
		return middleware.StoreError(err, "/")
	}
	return nil
}

// createPostForm renders the admin create-post form.
func (h *PostHandler) createPostForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pageData, appErr := h.withUnread(r, nil)
	if appErr != nil {
		return appErr
	}
	if err := h.view.Render(w, r, "create_post.html", pageData); err != nil {
		return middleware.StoreError(err, "/admin/dashboard")
	}
	return nil
}

// createPost handles the admin create-post submission.
func (h *PostHandler) createPost(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return middleware.ValidationError("Could not read the submitted form.", "/admin/create-post")
	}

	image, appErr := formImage(r, "/admin/create-post")
	if appErr != nil {
		return appErr
	}

	identity := middleware.GetIdentity(r.Context())
	_, err := h.posts.CreatePost(r.Context(),
		r.FormValue("title"),
		r.FormValue("content"),
		r.FormValue("category"),
		image,
		identity.UserID)
	if err != nil {
		return h.mapPostError(err, "/admin/create-post")
	}

	h.flash(r, "Post created successfully!", "success")
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
	return nil
}

// editPostForm renders the admin edit-post form for an existing post.
func (h *PostHandler) editPostForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return middleware.NotFoundError("Post not found.", "/admin/dashboard")
	}

	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return middleware.NotFoundError("Post not found.", "/admin/dashboard")
		}
		return middleware.StoreError(err, "/admin/dashboard")
	}

	pageData, appErr := h.withUnread(r, map[string]interface{}{"Post": post})
	if appErr != nil {
		return appErr
	}
	if err := h.view.Render(w, r, "edit_post.html", pageData); err != nil {
		return middleware.StoreError(err, "/admin/dashboard")
	}
	return nil
}

// editPost handles the admin edit-post submission, including explicit image
// removal and image replacement.
func (h *PostHandler) editPost(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return middleware.NotFoundError("Post not found.", "/admin/dashboard")
	}
	formPath := "/admin/edit-post/" + chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return middleware.ValidationError("Could not read the submitted form.", formPath)
	}

	image, appErr := formImage(r, formPath)
	if appErr != nil {
		return appErr
	}

	removeImage := r.FormValue("remove_image") == "yes"
	_, err = h.posts.UpdatePost(r.Context(), id,
		r.FormValue("title"),
		r.FormValue("content"),
		r.FormValue("category"),
		removeImage,
		image)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return middleware.NotFoundError("Post not found.", "/admin/dashboard")
		}
		return h.mapPostError(err, formPath)
	}

	h.flash(r, "Post updated successfully!", "success")
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
	return nil
}

// deletePost handles the admin delete-post action.
func (h *PostHandler) deletePost(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return middleware.NotFoundError("Post not found.", "/admin/dashboard")
	}

	if err := h.posts.DeletePost(r.Context(), id); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return middleware.NotFoundError("Post not found.", "/admin/dashboard")
		}
		return middleware.StoreError(err, "/admin/dashboard")
	}

	h.flash(r, "Post deleted successfully!", "success")
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
	return nil
}

// mapPostError translates service failures into the user-facing taxonomy.
func (h *PostHandler) mapPostError(err error, formPath string) *middleware.AppError {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		return middleware.ValidationError("Title and content are required.", formPath)
	case errors.Is(err, service.ErrInvalidCategory):
		return middleware.ValidationError("Please choose a valid category.", formPath)
	case errors.Is(err, media.ErrInvalidFormat):
		return middleware.ValidationError("Invalid image format. Allowed: png, jpg, jpeg, gif.", formPath)
	default:
		return middleware.StoreError(err, formPath)
	}
}

// withUnread attaches the inbox badge count to admin page data.
func (h *PostHandler) withUnread(r *http.Request, pageData map[string]interface{}) (map[string]interface{}, *middleware.AppError) {
	if pageData == nil {
		pageData = make(map[string]interface{})
	}
	unread, err := h.messages.UnreadCount(r.Context())
	if err != nil {
		return nil, middleware.StoreError(err, "/admin/dashboard")
	}
	pageData["UnreadCount"] = unread
	return pageData, nil
}

func (h *PostHandler) flash(r *http.Request, message, flashType string) {
	h.sm.Put(r.Context(), session.KeyFlash, message)
	h.sm.Put(r.Context(), session.KeyFlashType, flashType)
}

// formImage extracts the optional image upload from a multipart form.
func formImage(r *http.Request, formPath string) (*service.ImageUpload, *middleware.AppError) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, middleware.ValidationError("Could not read the uploaded image.", formPath)
	}
	if header.Filename == "" {
		file.Close()
		return nil, nil
	}
	return &service.ImageUpload{Reader: file, Filename: header.Filename}, nil
}
