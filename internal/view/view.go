package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"go-blog-app/internal/data"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/session"
)

// funcMap holds the helpers available inside every template.
var funcMap = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format("Jan 02, 2006")
	},
}

// View represents a collection of parsed HTML templates.
type View struct {
	templates map[string]*template.Template
	sm        session.Manager
}

// New creates a new View by parsing all templates from the given filesystem.
func New(templateFS fs.FS, sm session.Manager) (*View, error) {
	v := &View{
		templates: make(map[string]*template.Template),
		sm:        sm,
	}

	// First, get all the layout files
	layouts, err := fs.Glob(templateFS, "templates/layouts/*.html")
	if err != nil {
		return nil, err
	}

	// Then, get all the page files
	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	// For each page, parse it with the layout files
	for _, page := range pages {
		files := append(layouts, page)
		// The name of the template is the base name of the page file
		name := filepath.Base(page)
		ts, err := template.New(name).Funcs(funcMap).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		v.templates[name] = ts
	}

	return v, nil
}

// Render executes a specific template by name. The current identity, the
// fixed category set, and any pending flash notice are injected into the
// template data for the layout to use.
func (v *View) Render(w http.ResponseWriter, r *http.Request, name string, pageData map[string]interface{}) error {
	ts, ok := v.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	if pageData == nil {
		pageData = make(map[string]interface{})
	}
	pageData["Identity"] = middleware.GetIdentity(r.Context())
	pageData["Categories"] = data.Categories

	// Flash notices are one-shot: popping them clears the session copy.
	if flash := v.sm.PopString(r.Context(), session.KeyFlash); flash != "" {
		pageData["Flash"] = flash
		flashType := v.sm.PopString(r.Context(), session.KeyFlashType)
		if flashType == "" {
			flashType = "info"
		}
		pageData["FlashType"] = flashType
	}

	// Execute the template into a buffer first to catch any errors
	// before writing to the response writer.
	buf := new(bytes.Buffer)
	if err := ts.Execute(buf, pageData); err != nil {
		return err
	}

	_, err := buf.WriteTo(w)
	return err
}
