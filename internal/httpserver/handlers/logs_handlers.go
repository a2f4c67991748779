package handlers

import (
	"net/http"
	"strings"

	"ddportal/internal/models"
	"ddportal/internal/session"
)

type activityView struct {
	Logs   []models.AuditLog
	Action string
}

// Activity lists recent admin mutations made through the portal, newest
// first. ?action= narrows the list.
func Activity(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("action")))
		var logs []models.AuditLog
		if d.DB != nil {
			q := d.DB.WithContext(r.Context()).Order("created_at desc").Limit(200)
			if action != "" {
				q = q.Where("action = ?", action)
			}
			if err := q.Find(&logs).Error; err != nil {
				d.Log.Warnw("activity load failed", "error", err)
				flash(r, session.FlashError, "Failed to load activity.")
			}
		}
		render(d, w, r, "activity", "Activity", activityView{Logs: logs, Action: action})
	}
}

// Health reports liveness and the backend the portal talks to.
func Health(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, map[string]interface{}{"status": "ok", "backend": d.API.BaseURL()})
	}
}
