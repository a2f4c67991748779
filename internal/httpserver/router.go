package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ddportal/internal/auth"
	"ddportal/internal/gateway"
	"ddportal/internal/httpserver/handlers"
	"ddportal/internal/session"
	"ddportal/internal/web"
)

type Options struct {
	API      *gateway.Client
	Sessions *session.Store
	Views    *web.Renderer
	// DB holds the audit trail; nil disables it.
	DB  *gorm.DB
	Log *zap.SugaredLogger

	CookieSecure   bool
	SessionTTL     time.Duration
	MaxUploadBytes int64
	LoginRPS       float64
	LoginBurst     int
}

func NewRouter(o Options) http.Handler {
	d := &handlers.Deps{
		API:            o.API,
		Sessions:       o.Sessions,
		Views:          o.Views,
		DB:             o.DB,
		Log:            o.Log,
		MaxUploadBytes: o.MaxUploadBytes,
	}
	loading := o.Views.Loading()
	limiter := newLoginLimiter(o.LoginRPS, o.LoginBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(o.Log), middleware.Recoverer, SecureHeaders)
	r.Get("/healthz", handlers.Health(d))

	r.Group(func(site chi.Router) {
		site.Use(withSession(o.Sessions, cookieConfig{secure: o.CookieSecure, maxAge: o.SessionTTL}))
		site.Get("/login", handlers.LoginPage(d))
		site.With(limiter.Middleware).Post("/login", handlers.Login(d))
		site.Post("/logout", handlers.Logout(d))

		site.Group(func(protected chi.Router) {
			protected.Use(auth.RequireAuth(loading))
			protected.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, auth.AdminLanding, http.StatusSeeOther)
			})
			protected.Get("/home", handlers.Home(d))
			protected.Get("/dashboard", handlers.Dashboard(d))
			protected.Post("/dashboard/items/{itemID}/response", handlers.SubmitResponse(d))
			protected.Post("/dashboard/responses/{responseID}/files/delete", handlers.DeleteResponseFile(d))
			protected.Get("/files/responses/{fileName}", handlers.DownloadResponseFile(d))
			protected.Get("/files/documents/{fileName}", handlers.DownloadDocument(d))

			protected.Group(func(admin chi.Router) {
				admin.Use(auth.RequireAdmin(loading))
				admin.Get("/admin/companies", handlers.ListCompanies(d))
				admin.Post("/admin/companies", handlers.CreateCompany(d))
				admin.Post("/admin/companies/{id}", handlers.UpdateCompany(d))
				admin.Post("/admin/companies/{id}/delete", handlers.DeleteCompany(d))

				admin.Get("/admin/users", handlers.ListUsers(d))
				admin.Post("/admin/users", handlers.CreateUser(d))
				admin.Post("/admin/users/{userID}", handlers.UpdateUser(d))
				admin.Post("/admin/users/{userID}/delete", handlers.DeleteUser(d))
				admin.Post("/admin/users/{userID}/password", handlers.ResetPassword(d))
				admin.Post("/admin/users/{userID}/send-credentials", handlers.SendCredentials(d))

				admin.Get("/admin/users/{userID}", handlers.UserDetail(d))
				admin.Post("/admin/users/{userID}/items/{itemID}/response", handlers.SubmitResponseFor(d))
				admin.Post("/admin/users/{userID}/responses/{responseID}/files/delete", handlers.DeleteResponseFileFor(d))
				admin.Post("/admin/users/{userID}/documents", handlers.UploadDocuments(d))
				admin.Post("/admin/users/{userID}/documents/{documentID}/delete", handlers.DeleteDocument(d))

				admin.Get("/admin/activity", handlers.Activity(d))
			})
		})
	})
	return r
}
