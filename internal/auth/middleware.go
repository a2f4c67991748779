// Package auth decides who may see which portal screen.
package auth

import (
	"net/http"
	"net/url"
	"strings"

	"ddportal/internal/gateway"
	"ddportal/internal/models"
	"ddportal/internal/session"
)

const (
	SignInPath      = "/login"
	UserLandingPath = "/dashboard"
	AdminLanding    = "/home"
)

type Outcome int

const (
	Pending Outcome = iota
	Allow
	Redirect
)

type Decision struct {
	Outcome Outcome
	Target  string
}

// DecideAuth admits any signed-in identity. No redirect is decided while the
// session is still loading.
func DecideAuth(state session.State, id *models.Identity) Decision {
	if state != session.StateReady {
		return Decision{Outcome: Pending}
	}
	if id == nil {
		return Decision{Outcome: Redirect, Target: SignInPath}
	}
	return Decision{Outcome: Allow}
}

// DecideAdmin admits admins only; other signed-in users go to their landing
// screen.
func DecideAdmin(state session.State, id *models.Identity) Decision {
	d := DecideAuth(state, id)
	if d.Outcome != Allow {
		return d
	}
	if !id.IsAdmin() {
		return Decision{Outcome: Redirect, Target: UserLandingPath}
	}
	return d
}

// RequireAuth guards next with DecideAuth. pending renders the loading page.
// Admitted requests carry the identity and its bearer credential.
func RequireAuth(pending http.Handler) func(http.Handler) http.Handler {
	return guard(DecideAuth, pending)
}

func RequireAdmin(pending http.Handler) func(http.Handler) http.Handler {
	return guard(DecideAdmin, pending)
}

func guard(decide func(session.State, *models.Identity) Decision, pending http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			if s == nil {
				http.Redirect(w, r, SignInPath, http.StatusSeeOther)
				return
			}
			var idp *models.Identity
			if id, ok := s.Identity(); ok {
				idp = &id
			}
			d := decide(s.State(), idp)
			switch d.Outcome {
			case Pending:
				if r.Method == http.MethodGet || r.Method == http.MethodHead {
					pending.ServeHTTP(w, r)
					return
				}
				// the loading page cannot replay a form post
				s.AddFlash(session.FlashError, "Your session was still loading. Please submit the form again.")
				http.Redirect(w, r, referrer(r), http.StatusSeeOther)
			case Redirect:
				http.Redirect(w, r, d.Target, http.StatusSeeOther)
			default:
				ctx := WithIdentity(r.Context(), *idp)
				next.ServeHTTP(w, r.WithContext(gateway.WithCredential(ctx, idp.Credential)))
			}
		})
	}
}

// referrer is the same-site page that sent r, or the root.
func referrer(r *http.Request) string {
	u, err := url.Parse(r.Referer())
	if err != nil || (u.Host != "" && u.Host != r.Host) || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	return u.RequestURI()
}
