package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ddportal/internal/gateway"
	"ddportal/internal/models"
)

func idParam(r *http.Request, name string) (models.ID, bool) {
	id, err := models.ParseID(chi.URLParam(r, name))
	return id, err == nil && id > 0
}

// parseUpload reads a multipart form bounded by the configured upload size.
func parseUpload(d *Deps, w http.ResponseWriter, r *http.Request) error {
	limit := d.MaxUploadBytes
	if limit <= 0 {
		limit = 50 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return r.ParseMultipartForm(32 << 20)
}

// uploads returns the non-empty files posted under field.
func uploads(r *http.Request, field string) []gateway.Upload {
	if r.MultipartForm == nil {
		return nil
	}
	var out []gateway.Upload
	for _, fh := range r.MultipartForm.File[field] {
		if fh.Filename == "" {
			continue
		}
		out = append(out, gateway.UploadFromHeader(fh))
	}
	return out
}

func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}
