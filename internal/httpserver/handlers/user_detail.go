package handlers

import (
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"ddportal/internal/checklist"
	"ddportal/internal/gateway"
	"ddportal/internal/models"
)

type detailRow struct {
	Item     models.ChecklistItem
	Response *models.Response
	// OtherResponder is set when someone other than the viewed user
	// submitted the response.
	OtherResponder bool
}

type userDetailView struct {
	User      models.User
	Rows      []detailRow
	Documents []models.Document
	Failed    bool
}

func userPath(id models.ID) string {
	return fmt.Sprintf("%s/%d", usersPath, id)
}

func detailRows(u models.User, items []models.ChecklistItem, responses []models.Response) []detailRow {
	byItem := make(map[models.ID]models.Response, len(responses))
	for _, r := range responses {
		byItem[r.ItemID] = r
	}
	rows := make([]detailRow, 0, len(items))
	for _, it := range items {
		row := detailRow{Item: it}
		if r, ok := byItem[it.ID]; ok {
			row.Response = &r
			row.OtherResponder = r.ResponderEmail != "" && r.ResponderEmail != u.Email
		}
		rows = append(rows, row)
	}
	return rows
}

// UserDetail shows one user's checklist answers and documents to an admin.
func UserDetail(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := idParam(r, "userID")
		if !ok {
			http.NotFound(w, r)
			return
		}
		var (
			user      models.User
			responses []models.Response
			items     []models.ChecklistItem
			documents []models.Document
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() (err error) {
			user, err = d.API.User(ctx, userID)
			return err
		})
		g.Go(func() (err error) {
			if responses, err = d.API.ResponsesForUser(ctx, userID); err != nil {
				return err
			}
			items, err = checklist.ItemsFor(ctx, d.API, responses)
			return err
		})
		g.Go(func() (err error) {
			documents, err = d.API.Documents(ctx, userID)
			return err
		})
		view := userDetailView{}
		if err := g.Wait(); err != nil {
			if loadFailed(d, w, r, err, "Failed to load user details or responses.") {
				return
			}
			view.Failed = true
		} else {
			view = userDetailView{User: user, Rows: detailRows(user, items, responses), Documents: documents}
		}
		render(d, w, r, "user_detail", "User Detail", view)
	}
}

// SubmitResponseFor answers a checklist item on behalf of the viewed user.
func SubmitResponseFor(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok1 := idParam(r, "userID")
		itemID, ok2 := idParam(r, "itemID")
		if !ok1 || !ok2 {
			http.NotFound(w, r)
			return
		}
		back := fmt.Sprintf("%s#item-%d", userPath(userID), itemID)
		if err := parseUpload(d, w, r); err != nil {
			invalid(w, r, "Failed to update response.", back)
			return
		}
		defer cleanupForm(r)

		answer, err := models.ParseAnswer(r.FormValue("response"))
		if err != nil {
			invalid(w, r, "Please select a response for the item.", back)
			return
		}
		user, err := d.API.User(r.Context(), userID)
		if err != nil {
			fail(d, w, r, err, "Failed to update response.", back)
			return
		}
		sub := gateway.Submission{
			ItemID:          itemID,
			Response:        answer,
			TargetUserID:    &user.ID,
			TargetCompanyID: &user.CompanyID,
		}
		if answer == models.AnswerYes {
			sub.Files = uploads(r, "files")
		}
		if _, err := d.API.SubmitResponse(r.Context(), sub); err != nil {
			fail(d, w, r, err, "Failed to update response.", back)
			return
		}
		audit(d, r, "RESPONSE_UPDATE", "user:"+userID.String(), map[string]interface{}{
			"item_id": itemID, "response": answer, "files": len(sub.Files),
		})
		succeed(w, r, "Response updated successfully!", back)
	}
}

func DeleteResponseFileFor(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok1 := idParam(r, "userID")
		responseID, ok2 := idParam(r, "responseID")
		if !ok1 || !ok2 {
			http.NotFound(w, r)
			return
		}
		back := userPath(userID)
		stored := r.PostFormValue("stored_file_name")
		if stored == "" {
			invalid(w, r, "Failed to delete file.", back)
			return
		}
		if err := d.API.DeleteResponseFile(r.Context(), responseID, stored); err != nil {
			fail(d, w, r, err, "Failed to delete file.", back)
			return
		}
		audit(d, r, "RESPONSE_FILE_DELETE", "response:"+responseID.String(), map[string]interface{}{"file": stored, "user_id": userID})
		succeed(w, r, "File deleted successfully.", back)
	}
}

// UploadDocuments forwards every selected file to the backend concurrently.
// Uploads that succeeded before another one failed are kept.
func UploadDocuments(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := idParam(r, "userID")
		if !ok {
			http.NotFound(w, r)
			return
		}
		back := userPath(userID) + "#documents"
		if err := parseUpload(d, w, r); err != nil {
			invalid(w, r, "Failed to upload document(s).", back)
			return
		}
		defer cleanupForm(r)

		files := uploads(r, "documents")
		if len(files) == 0 {
			invalid(w, r, "Please select at least one file to upload.", back)
			return
		}
		if err := d.API.UploadDocuments(r.Context(), userID, files); err != nil {
			fail(d, w, r, err, "Failed to upload document(s).", back)
			return
		}
		audit(d, r, "DOCUMENT_UPLOAD", "user:"+userID.String(), map[string]interface{}{"count": len(files)})
		succeed(w, r, fmt.Sprintf("%d document(s) uploaded successfully!", len(files)), back)
	}
}

func DeleteDocument(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok1 := idParam(r, "userID")
		docID, ok2 := idParam(r, "documentID")
		if !ok1 || !ok2 {
			http.NotFound(w, r)
			return
		}
		back := userPath(userID) + "#documents"
		if err := d.API.DeleteDocument(r.Context(), docID); err != nil {
			fail(d, w, r, err, "Failed to delete document.", back)
			return
		}
		audit(d, r, "DOCUMENT_DELETE", "document:"+docID.String(), map[string]interface{}{"user_id": userID})
		succeed(w, r, "Document deleted successfully!", back)
	}
}
