// Package web renders the portal's HTML pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"ddportal/internal/models"
	"ddportal/internal/session"
)

//go:embed templates/*.html
var files embed.FS

// Page is the data every template receives.
type Page struct {
	Title    string
	Identity *models.Identity
	Flashes  []session.Flash
	Data     interface{}
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"answers": func() []models.Answer { return models.Answers },
	"isYes":   func(a models.Answer) bool { return a == models.AnswerYes },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	"pathEscape": url.PathEscape,
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, n := range names {
		base := strings.TrimSuffix(path.Base(n), ".html")
		if base == "layout" {
			continue
		}
		t, err := template.New(base).Funcs(funcs).ParseFS(files, "templates/layout.html", n)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", n, err)
		}
		r.pages[base] = t
	}
	return r, nil
}

// Render writes page with status. Templates execute into a buffer so a
// failure never leaves a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, p Page) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	// pages defining a template of their own name are standalone
	root := "layout"
	if own := t.Lookup(page); own != nil && own.Tree != nil {
		root = page
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, root, p); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Loading is the neutral page shown while a session is being restored.
func (r *Renderer) Loading() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Refresh", "1")
		_ = r.Render(w, http.StatusOK, "loading", Page{Title: "Loading"})
	})
}
