package handlers

import (
	"net/http"
	"strings"

	"ddportal/internal/auth"
	"ddportal/internal/models"
	"ddportal/internal/session"
)

type loginView struct {
	Email string
	Error string
}

func landing(id models.Identity) string {
	if id.IsAdmin() {
		return auth.AdminLanding
	}
	return auth.UserLandingPath
}

// LoginPage shows the sign-in form. Signed-in browsers go to their landing
// screen.
func LoginPage(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s := session.FromContext(r.Context()); s != nil {
			if id, ok := s.Identity(); ok {
				redirect(w, r, landing(id))
				return
			}
		}
		render(d, w, r, "login", "Sign in", loginView{})
	}
}

func Login(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())
		email := strings.TrimSpace(r.PostFormValue("email"))
		password := r.PostFormValue("password")
		if email == "" || password == "" {
			render(d, w, r, "login", "Sign in", loginView{Email: email, Error: "Email and password are required."})
			return
		}
		id, err := d.Sessions.SignIn(r.Context(), s, email, password)
		if err != nil {
			d.Log.Infow("sign-in rejected", "email", email, "error", err)
			render(d, w, r, "login", "Sign in", loginView{Email: email, Error: err.Error()})
			return
		}
		redirect(w, r, landing(id))
	}
}

func Logout(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s := session.FromContext(r.Context()); s != nil {
			d.Sessions.SignOut(r.Context(), s)
		}
		redirect(w, r, auth.SignInPath)
	}
}

// Home is the admin landing screen.
func Home(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(d, w, r, "home", "Home", nil)
	}
}
