// Package checklist holds the render-time rules of the compliance checklist:
// who may edit a displayed response, and the dashboard state built from the
// backend's categories, items and responses.
package checklist

import "ddportal/internal/models"

// Ownership decides how a response is rendered for a viewer. Read-only hides
// answer selection, uploads and file deletion; the answer, its attribution
// and download links stay visible.
type Ownership struct {
	IsOwnResponse bool
	IsReadOnly    bool
}

// CanDeleteFiles reports whether file-delete actions are shown.
func (o Ownership) CanDeleteFiles() bool { return o.IsOwnResponse }

// Resolve applies the ownership policy to the response displayed for an item.
//
// No response: editable, not own (the viewer may create it). A response with
// a usable user id: own and editable only when it equals viewerID. A response
// without a usable user id: own and editable.
func Resolve(viewerID models.ID, resp *models.Response) Ownership {
	if resp == nil {
		return Ownership{}
	}
	if !resp.UserID.Valid {
		// TODO: treat as foreign once the backend always returns user_id.
		return Ownership{IsOwnResponse: true}
	}
	own := resp.UserID.ID == viewerID
	return Ownership{IsOwnResponse: own, IsReadOnly: !own}
}
