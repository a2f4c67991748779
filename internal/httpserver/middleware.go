package httpserver

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ddportal/internal/session"
)

const SessionCookie = "dd_session"

// restoreWait is how long a request waits for a fresh session to be
// restored before the loading page is shown instead.
const restoreWait = 1500 * time.Millisecond

type cookieConfig struct {
	secure bool
	maxAge time.Duration
}

// withSession attaches the browser's session, issuing a cookie for new ones,
// and starts restoring its identity on first sight.
func withSession(store *session.Store, cc cookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(SessionCookie); err == nil {
				id = c.Value
			}
			s := store.Session(id)
			if s.ID != id {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    s.ID,
					Path:     "/",
					MaxAge:   int(cc.maxAge.Seconds()),
					HttpOnly: true,
					Secure:   cc.secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := session.WithSession(r.Context(), s)
			if s.State() == session.StateUninitialized {
				done := make(chan struct{})
				go func() {
					defer close(done)
					store.Restore(ctx, s)
				}()
				select {
				case <-done:
				case <-time.After(restoreWait):
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UnauthorizedHook is the gateway's 401 policy: the request's session is
// signed out, which sends the browser to the sign-in screen on render.
func UnauthorizedHook(store *session.Store, lg *zap.SugaredLogger) func(ctx context.Context) {
	return func(ctx context.Context) {
		s := session.FromContext(ctx)
		if s == nil {
			return
		}
		if _, ok := s.Identity(); ok {
			lg.Infow("credential rejected by backend", "session", s.ID)
		}
		store.SignOut(ctx, s)
	}
}

// SecureHeaders adds standard security headers.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request.
func requestLogger(lg *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			lg.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"latency_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// loginLimiter throttles sign-in attempts per client IP.
type loginLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	now      func() time.Time
	pruned   time.Time
}

// visitorTTL is how long an idle client's limiter is kept.
const visitorTTL = 3 * time.Minute

func newLoginLimiter(rps float64, burst int) *loginLimiter {
	if burst < 1 {
		burst = 1
	}
	return &loginLimiter{visitors: map[string]*visitor{}, rps: rate.Limit(rps), burst: burst, now: time.Now}
}

func (l *loginLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.pruned) > visitorTTL {
		l.prune(now.Add(-visitorTTL))
		l.pruned = now
	}
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// prune drops visitors not seen since cutoff. l.mu must be held.
func (l *loginLimiter) prune(cutoff time.Time) {
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
}

func (l *loginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = strings.Trim(r.RemoteAddr, "[]")
		}
		if !l.allow(ip) {
			w.Header().Set("Retry-After", "5")
			http.Error(w, "Too many login attempts. Please wait a moment and try again.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
