package handlers

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ddportal/internal/auth"
	"ddportal/internal/gateway"
)

// download streams a backend file to the browser. Downloads are available to
// any signed-in user regardless of who owns the response.
func download(d *Deps, fetch func(*http.Request, string) (*gateway.Download, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "fileName")
		if name == "" || name != path.Base(name) {
			http.NotFound(w, r)
			return
		}
		dl, err := fetch(r, name)
		if err != nil {
			if signedOutDuring(r) {
				redirect(w, r, auth.SignInPath)
				return
			}
			d.Log.Warnw("download failed", "file", name, "error", err)
			http.Error(w, gateway.Message(err, "File not available."), http.StatusBadGateway)
			return
		}
		defer dl.Body.Close()

		h := w.Header()
		ct := dl.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		cd := dl.ContentDisposition
		if cd == "" {
			if orig := r.URL.Query().Get("name"); orig != "" {
				name = orig
			}
			cd = mime.FormatMediaType("attachment", map[string]string{"filename": name})
		}
		h.Set("Content-Disposition", cd)
		if dl.ContentLength > 0 {
			h.Set("Content-Length", strconv.FormatInt(dl.ContentLength, 10))
		}
		if _, err := io.Copy(w, dl.Body); err != nil {
			d.Log.Debugw("download interrupted", "file", name, "error", err)
		}
	}
}

func DownloadResponseFile(d *Deps) http.HandlerFunc {
	return download(d, func(r *http.Request, name string) (*gateway.Download, error) {
		return d.API.DownloadResponseFile(r.Context(), name)
	})
}

func DownloadDocument(d *Deps) http.HandlerFunc {
	return download(d, func(r *http.Request, name string) (*gateway.Download, error) {
		return d.API.DownloadDocument(r.Context(), name)
	})
}
