package gateway

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Upload is one file to forward to the backend.
type Upload struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// UploadFromHeader wraps a file received by the portal in a browser form.
func UploadFromHeader(fh *multipart.FileHeader) Upload {
	return Upload{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

type formField struct {
	name, value string
}

// postMultipart streams fields followed by files (all under fileField) to
// path.
func (c *Client) postMultipart(ctx context.Context, path string, fields []formField, fileField string, files []Upload, out interface{}) error {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeParts(writer, fields, fileField, files)
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, path, pr)
	if err != nil {
		pr.Close()
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	err = c.doJSON(req, out)
	// unblocks the writer when the request failed before draining the body
	pr.Close()
	return err
}

func writeParts(w *multipart.Writer, fields []formField, fileField string, files []Upload) error {
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return err
		}
	}
	for _, u := range files {
		if err := writeFile(w, fileField, u); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(w *multipart.Writer, field string, u Upload) error {
	src, err := u.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", u.Name, err)
	}
	defer src.Close()
	part, err := w.CreateFormFile(field, u.Name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}
