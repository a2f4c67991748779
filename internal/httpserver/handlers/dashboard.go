package handlers

import (
	"fmt"
	"net/http"

	"ddportal/internal/auth"
	"ddportal/internal/checklist"
	"ddportal/internal/gateway"
	"ddportal/internal/models"
	"ddportal/internal/session"
)

type dashboardView struct {
	Categories []checklist.CategoryView
	Answered   int
	Total      int
}

func newDashboardView(b *checklist.Board, viewer models.ID) dashboardView {
	v := dashboardView{Categories: b.View(viewer), Answered: b.Answered()}
	for _, c := range b.Categories {
		v.Total += len(c.Items)
	}
	return v
}

// Dashboard shows the viewer's checklist. When the refresh fails the last
// board of the session, if any, is shown with an error banner.
func Dashboard(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		s := session.FromContext(r.Context())
		board, err := checklist.Load(r.Context(), d.API, id.ID)
		if err != nil {
			if loadFailed(d, w, r, err, "Failed to load checklist.") {
				return
			}
			board = s.Board()
			if board == nil {
				board = checklist.NewBoard(nil, nil)
			}
		} else {
			s.SetBoard(board)
		}
		render(d, w, r, "dashboard", "Dashboard", newDashboardView(board, id.ID))
	}
}

func SubmitResponse(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		s := session.FromContext(r.Context())
		itemID, ok := idParam(r, "itemID")
		if !ok {
			http.NotFound(w, r)
			return
		}
		back := fmt.Sprintf("/dashboard#item-%d", itemID)
		if err := parseUpload(d, w, r); err != nil {
			invalid(w, r, "Failed to submit response: the upload is too large or malformed.", back)
			return
		}
		defer cleanupForm(r)

		answer, err := models.ParseAnswer(r.FormValue("response"))
		if err != nil {
			invalid(w, r, "Please select a response for the item.", back)
			return
		}
		board := s.Board()
		if board != nil && checklist.Resolve(id.ID, board.Response(itemID)).IsReadOnly {
			invalid(w, r, "This response was submitted by another user and is read-only.", back)
			return
		}
		sub := gateway.Submission{ItemID: itemID, Response: answer}
		if answer == models.AnswerYes {
			sub.Files = uploads(r, "files")
		}
		echo, err := d.API.SubmitResponse(r.Context(), sub)
		if err != nil {
			fail(d, w, r, err, "Failed to submit response: "+gateway.Message(err, "Please try again."), back)
			return
		}
		if board != nil {
			s.SetBoard(board.Merged(itemID, id.ID, answer, echo))
		}
		succeed(w, r, "Response submitted successfully!", back)
	}
}

// DeleteResponseFile removes one evidence file from the viewer's own response.
func DeleteResponseFile(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		s := session.FromContext(r.Context())
		responseID, ok := idParam(r, "responseID")
		if !ok {
			http.NotFound(w, r)
			return
		}
		stored := r.PostFormValue("stored_file_name")
		if stored == "" {
			invalid(w, r, "Failed to delete file.", "/dashboard")
			return
		}
		if b := s.Board(); b != nil {
			if resp := b.ResponseByID(responseID); resp != nil && !checklist.Resolve(id.ID, resp).CanDeleteFiles() {
				invalid(w, r, "Only the author of a response can delete its files.", "/dashboard")
				return
			}
		}
		if err := d.API.DeleteResponseFile(r.Context(), responseID, stored); err != nil {
			fail(d, w, r, err, "Failed to delete file.", "/dashboard")
			return
		}
		succeed(w, r, "File deleted successfully.", "/dashboard")
	}
}
