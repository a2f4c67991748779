package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ddportal/internal/auth"
	"ddportal/internal/gateway"
	"ddportal/internal/session"
	"ddportal/internal/web"
)

// Deps is what every screen handler needs.
type Deps struct {
	API      *gateway.Client
	Sessions *session.Store
	Views    *web.Renderer
	DB       *gorm.DB
	Log      *zap.SugaredLogger
	// MaxUploadBytes bounds multipart form bodies.
	MaxUploadBytes int64
}

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// render shows a page. A request whose session was signed out while it ran
// (the backend rejected its credential) goes to the sign-in screen instead.
func render(d *Deps, w http.ResponseWriter, r *http.Request, page, title string, data interface{}) {
	s := session.FromContext(r.Context())
	if signedOutDuring(r) {
		http.Redirect(w, r, auth.SignInPath, http.StatusSeeOther)
		return
	}
	p := web.Page{Title: title, Data: data}
	if s != nil {
		if id, ok := s.Identity(); ok {
			p.Identity = &id
		}
		p.Flashes = s.TakeFlashes()
	}
	if err := d.Views.Render(w, http.StatusOK, page, p); err != nil {
		d.Log.Errorw("render failed", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func signedOutDuring(r *http.Request) bool {
	if _, admitted := auth.FromContext(r.Context()); !admitted {
		return false
	}
	s := session.FromContext(r.Context())
	if s == nil {
		return true
	}
	_, ok := s.Identity()
	return !ok
}

func flash(r *http.Request, kind, msg string) {
	if s := session.FromContext(r.Context()); s != nil {
		s.AddFlash(kind, msg)
	}
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// succeed queues a success banner and redirects to the screen to refetch.
func succeed(w http.ResponseWriter, r *http.Request, msg, to string) {
	flash(r, session.FlashSuccess, msg)
	redirect(w, r, to)
}

// fail reports a failed user action. 401s were already handled by the
// gateway hook and only need the navigation to sign-in.
func fail(d *Deps, w http.ResponseWriter, r *http.Request, err error, msg, to string) {
	if errors.Is(err, gateway.ErrUnauthorized) || signedOutDuring(r) {
		redirect(w, r, auth.SignInPath)
		return
	}
	if err != nil {
		d.Log.Warnw("action failed", "path", r.URL.Path, "error", err)
	}
	flash(r, session.FlashError, msg)
	redirect(w, r, to)
}

// invalid rejects a form before any backend call.
func invalid(w http.ResponseWriter, r *http.Request, msg, to string) {
	flash(r, session.FlashError, msg)
	redirect(w, r, to)
}

// withServerMessage appends the backend's message to msg when it sent one.
func withServerMessage(err error, msg string) string {
	if m := gateway.Message(err, ""); m != "" {
		return msg + ": " + m
	}
	return msg
}

// loadFailed reports a failed screen fetch as a banner. It returns true when
// the request has been sent to the sign-in screen instead.
func loadFailed(d *Deps, w http.ResponseWriter, r *http.Request, err error, msg string) bool {
	if errors.Is(err, gateway.ErrUnauthorized) || signedOutDuring(r) {
		redirect(w, r, auth.SignInPath)
		return true
	}
	d.Log.Warnw("screen load failed", "path", r.URL.Path, "error", err)
	flash(r, session.FlashError, msg)
	return false
}
