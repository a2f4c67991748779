package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"ddportal/internal/models"
)

// ErrUploadFailed reports that at least one file of a batch upload failed.
// Files that were already stored are kept.
var ErrUploadFailed = errors.New("failed to upload document(s)")

func (c *Client) Documents(ctx context.Context, userID models.ID) ([]models.Document, error) {
	var out []models.Document
	if err := c.get(ctx, "/documents/user/"+userID.String(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UploadDocument(ctx context.Context, userID models.ID, f Upload) error {
	return c.postMultipart(ctx, "/documents/user/"+userID.String()+"/upload", nil, "document", []Upload{f}, nil)
}

// UploadDocuments sends one request per file concurrently and waits for all.
func (c *Client) UploadDocuments(ctx context.Context, userID models.ID, files []Upload) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(func() error {
			return c.UploadDocument(gctx, userID, f)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	return nil
}

func (c *Client) DeleteDocument(ctx context.Context, id models.ID) error {
	return c.del(ctx, "/documents/"+id.String(), nil)
}

func (c *Client) DownloadDocument(ctx context.Context, fileName string) (*Download, error) {
	return c.download(ctx, "/documents/download/"+url.PathEscape(fileName))
}
