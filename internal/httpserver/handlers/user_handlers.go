package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"ddportal/internal/auth"
	"ddportal/internal/gateway"
	"ddportal/internal/models"
)

const usersPath = "/admin/users"

type usersView struct {
	Users     []models.User
	Companies []models.Company
	Roles     []string
	Query     string
	Total     int
}

// filterUsers matches q against the e-mail and company name.
func filterUsers(us []models.User, q string) []models.User {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return us
	}
	out := make([]models.User, 0, len(us))
	for _, u := range us {
		if strings.Contains(strings.ToLower(u.Email), q) || strings.Contains(strings.ToLower(u.CompanyName), q) {
			out = append(out, u)
		}
	}
	return out
}

func ListUsers(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		var (
			users     []models.User
			companies []models.Company
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() (err error) {
			users, err = d.API.Users(ctx)
			return err
		})
		g.Go(func() (err error) {
			companies, err = d.API.Companies(ctx)
			return err
		})
		if err := g.Wait(); err != nil && loadFailed(d, w, r, err, "Failed to load users.") {
			return
		}
		render(d, w, r, "users", "User Management", usersView{
			Users:     filterUsers(users, q),
			Companies: companies,
			Roles:     []string{models.RoleUser, models.RoleAdmin},
			Query:     q,
			Total:     len(users),
		})
	}
}

func validRole(role string) bool {
	return role == models.RoleUser || role == models.RoleAdmin
}

func CreateUser(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.PostFormValue("email"))
		password := r.PostFormValue("password")
		role := r.PostFormValue("role")
		if role == "" {
			role = models.RoleUser
		}
		companyID, err := models.ParseID(r.PostFormValue("company_id"))
		switch {
		case email == "" || password == "":
			invalid(w, r, "Email and password are required.", usersPath)
			return
		case !validRole(role):
			invalid(w, r, "Role must be user or admin.", usersPath)
			return
		case err != nil:
			invalid(w, r, "Please assign a company.", usersPath)
			return
		}

		newID, err := d.API.CreateUser(r.Context(), gateway.NewUser{Email: email, Password: password, Role: role, CompanyID: companyID})
		if err != nil {
			fail(d, w, r, err, "Failed to create user.", usersPath)
			return
		}
		audit(d, r, "USER_CREATE", email, map[string]interface{}{"role": role, "company_id": companyID})

		if r.PostFormValue("send_email") == "" || !newID.Valid {
			succeed(w, r, "User created successfully!", usersPath)
			return
		}
		if err := d.API.SendCredentials(r.Context(), newID.ID, password); err != nil {
			d.Log.Warnw("credentials email failed", "user", newID.ID, "error", err)
			succeed(w, r, "User created successfully, but failed to send email.", usersPath)
			return
		}
		succeed(w, r, "User created successfully and credentials email sent!", usersPath)
	}
}

func UpdateUser(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "userID")
		if !ok {
			http.NotFound(w, r)
			return
		}
		role := r.PostFormValue("role")
		companyID, err := models.ParseID(r.PostFormValue("company_id"))
		if !validRole(role) || err != nil {
			invalid(w, r, "Please choose a role and a company.", usersPath)
			return
		}
		if err := d.API.UpdateUser(r.Context(), id, role, companyID); err != nil {
			fail(d, w, r, err, withServerMessage(err, "Failed to update user"), usersPath)
			return
		}
		audit(d, r, "USER_UPDATE", "user:"+id.String(), map[string]interface{}{"role": role, "company_id": companyID})
		succeed(w, r, "User updated successfully!", usersPath)
	}
}

func DeleteUser(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "userID")
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := d.API.DeleteUser(r.Context(), id); err != nil {
			fail(d, w, r, err, withServerMessage(err, "Failed to delete user"), usersPath)
			return
		}
		audit(d, r, "USER_DELETE", "user:"+id.String(), nil)
		succeed(w, r, "User deleted successfully!", usersPath)
	}
}

// ResetPassword sets a new password and optionally e-mails it to the user.
func ResetPassword(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "userID")
		if !ok {
			http.NotFound(w, r)
			return
		}
		password := r.PostFormValue("password")
		if err := auth.ValidatePassword(password); err != nil {
			invalid(w, r, err.Error(), usersPath)
			return
		}
		if err := d.API.SetPassword(r.Context(), id, password); err != nil {
			fail(d, w, r, err, "Failed to reset password.", usersPath)
			return
		}
		audit(d, r, "USER_PASSWORD_RESET", "user:"+id.String(), nil)
		if r.PostFormValue("send_email") == "" {
			succeed(w, r, "Password reset successfully!", usersPath)
			return
		}
		if err := d.API.SendCredentials(r.Context(), id, password); err != nil {
			d.Log.Warnw("credentials email failed", "user", id, "error", err)
			succeed(w, r, "Password reset successfully, but failed to send email.", usersPath)
			return
		}
		succeed(w, r, "Password reset successfully and credentials email sent!", usersPath)
	}
}

func SendCredentials(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "userID")
		if !ok {
			http.NotFound(w, r)
			return
		}
		password := r.PostFormValue("password")
		if err := auth.ValidatePassword(password); err != nil {
			invalid(w, r, err.Error(), usersPath)
			return
		}
		if err := d.API.SendCredentials(r.Context(), id, password); err != nil {
			fail(d, w, r, err, "Failed to send credentials email: "+gateway.Message(err, "Failed to send credentials email."), usersPath)
			return
		}
		audit(d, r, "USER_SEND_CREDENTIALS", "user:"+id.String(), nil)
		succeed(w, r, "Credentials email sent successfully!", usersPath)
	}
}
