package handlers

import (
	"net/http"

	"ddportal/internal/auth"
	"ddportal/internal/models"
)

// audit records an admin mutation that the backend accepted. Failures are
// logged and otherwise ignored.
func audit(d *Deps, r *http.Request, action, target string, md map[string]interface{}) {
	if d.DB == nil {
		return
	}
	id, _ := auth.FromContext(r.Context())
	row := models.AuditLog{
		ActorID:    int64(id.ID),
		ActorEmail: id.Email,
		Action:     action,
		Target:     target,
		Metadata:   models.NewJSONB(md),
	}
	if err := d.DB.WithContext(r.Context()).Create(&row).Error; err != nil {
		d.Log.Warnw("audit write failed", "action", action, "error", err)
	}
}
