package gateway

import (
	"context"
	"net/url"

	"ddportal/internal/models"
)

// Submission is one upsert of a checklist response. The target fields are set
// only when an administrator answers on behalf of another user.
type Submission struct {
	ItemID          models.ID
	Response        models.Answer
	Files           []Upload
	TargetUserID    *models.ID
	TargetCompanyID *models.ID
}

func (c *Client) ResponsesForUser(ctx context.Context, userID models.ID) ([]models.Response, error) {
	var out []models.Response
	if err := c.get(ctx, "/responses/user/"+userID.String(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitResponse upserts a response and returns the backend's echo of it.
func (c *Client) SubmitResponse(ctx context.Context, s Submission) (models.Response, error) {
	var fields []formField
	if s.TargetUserID != nil {
		fields = append(fields, formField{"targetUserId", s.TargetUserID.String()})
	}
	if s.TargetCompanyID != nil {
		fields = append(fields, formField{"targetCompanyId", s.TargetCompanyID.String()})
	}
	fields = append(fields,
		formField{"itemId", s.ItemID.String()},
		formField{"response", string(s.Response)},
	)
	var echo models.Response
	if err := c.postMultipart(ctx, "/responses", fields, "files", s.Files, &echo); err != nil {
		return models.Response{}, err
	}
	return echo, nil
}

func (c *Client) DeleteResponseFile(ctx context.Context, responseID models.ID, storedFileName string) error {
	return c.del(ctx, "/responses/"+responseID.String()+"/file", map[string]string{"storedFileName": storedFileName})
}

func (c *Client) DownloadResponseFile(ctx context.Context, fileName string) (*Download, error) {
	return c.download(ctx, "/responses/download/"+url.PathEscape(fileName))
}
