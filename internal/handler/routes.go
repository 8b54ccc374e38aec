package handler

import (
	"net/http"

	appmw "go-blog-app/internal/middleware"
	"go-blog-app/internal/session"
	"go-blog-app/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures a new chi router.
// mediaDir is the local upload directory to serve at /media/; it is empty
// when the object-store strategy is active and media URLs are absolute.
func NewRouter(
	postHandler *PostHandler,
	accountHandler *AccountHandler,
	messageHandler *MessageHandler,
	authz func(http.Handler) http.Handler,
	errHandler func(appmw.AppHandler) http.Handler,
	sm session.Manager,
	users appmw.UserGetter,
	mediaDir string,
	ssoEnabled bool,
) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(sm.LoadAndSave)
	r.Use(appmw.LoadIdentity(sm))
	r.Use(authz)

	// Public routes
	r.Method(http.MethodGet, "/", errHandler(postHandler.landing))
	r.Method(http.MethodGet, "/about", errHandler(postHandler.about))
	r.Method(http.MethodGet, "/contact", errHandler(messageHandler.contactForm))
	r.Method(http.MethodPost, "/contact", errHandler(messageHandler.contactSubmit))

	// Account routes
	r.Method(http.MethodGet, "/register", errHandler(accountHandler.registerForm))
	r.Method(http.MethodPost, "/register", errHandler(accountHandler.register))
	r.Method(http.MethodGet, "/login", errHandler(accountHandler.loginForm))
	r.Method(http.MethodPost, "/login", errHandler(accountHandler.login))
	r.Method(http.MethodGet, "/logout", errHandler(accountHandler.logout))
	if ssoEnabled {
		r.Method(http.MethodGet, "/auth/oidc/login", errHandler(accountHandler.ssoLogin))
		r.Method(http.MethodGet, "/auth/oidc/callback", errHandler(accountHandler.ssoCallback))
	}

	// Routes requiring any authenticated session
	r.Group(func(r chi.Router) {
		r.Use(appmw.RequireSession(sm))

		r.Method(http.MethodGet, "/post/{id}", errHandler(postHandler.viewPost))
		r.Method(http.MethodGet, "/category/{name}", errHandler(postHandler.viewCategory))
	})

	// Admin routes; the admin flag is re-checked against the user store.
	r.Group(func(r chi.Router) {
		r.Use(appmw.RequireAdmin(sm, users))

		r.Method(http.MethodGet, "/admin/dashboard", errHandler(postHandler.dashboard))
		r.Method(http.MethodGet, "/admin/create-post", errHandler(postHandler.createPostForm))
		r.Method(http.MethodPost, "/admin/create-post", errHandler(postHandler.createPost))
		r.Method(http.MethodGet, "/admin/edit-post/{id}", errHandler(postHandler.editPostForm))
		r.Method(http.MethodPost, "/admin/edit-post/{id}", errHandler(postHandler.editPost))
		r.Method(http.MethodPost, "/admin/delete-post/{id}", errHandler(postHandler.deletePost))

		r.Method(http.MethodGet, "/admin/messages", errHandler(messageHandler.inbox))
		r.Method(http.MethodPost, "/admin/messages/{id}/toggle-read", errHandler(messageHandler.toggleRead))
		r.Method(http.MethodPost, "/admin/messages/mark-all-read", errHandler(messageHandler.markAllRead))
		r.Method(http.MethodPost, "/admin/messages/{id}/delete", errHandler(messageHandler.deleteMessage))
	})

	// Static assets and locally stored media
	r.Handle("/static/*", http.FileServer(http.FS(web.StaticFS)))
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/favicon.ico", http.StatusMovedPermanently)
	})
	if mediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir))))
	}

	return r
}
