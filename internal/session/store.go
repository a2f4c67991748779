// Package session owns the signed-in identity and bearer credential of every
// browser talking to the portal.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ddportal/internal/gateway"
	"ddportal/internal/models"
)

var (
	ErrNoToken = errors.New("Login failed: No token received")
	ErrNoUser  = errors.New("Login failed: No user data received")
)

const signInFallback = "Login failed. Please try again."

// SignInError is a rejected or failed login call.
type SignInError struct {
	Message string
	Err     error
}

func (e *SignInError) Error() string { return e.Message }
func (e *SignInError) Unwrap() error { return e.Err }

// Authenticator is the part of the backend the store talks to.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (gateway.LoginResult, error)
	Me(ctx context.Context) (models.Identity, error)
}

type Store struct {
	auth    Authenticator
	persist Persister
	sealer  *Sealer
	ttl     time.Duration
	lg      *zap.SugaredLogger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(auth Authenticator, persist Persister, sealer *Sealer, ttl time.Duration, lg *zap.SugaredLogger) *Store {
	if lg == nil {
		lg = zap.NewNop().Sugar()
	}
	return &Store{
		auth:     auth,
		persist:  persist,
		sealer:   sealer,
		ttl:      ttl,
		lg:       lg,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

// Session returns the live session for id. Unknown or malformed ids get a
// fresh uninitialized session; callers compare the returned ID with the one
// they asked for to detect that.
func (st *Store) Session(id string) *Session {
	now := st.now()
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	st.mu.Lock()
	s, ok := st.sessions[id]
	if !ok {
		s = newSession(id, now)
		st.sessions[id] = s
	}
	st.mu.Unlock()
	s.touch(now)
	return s
}

// Restore resolves the identity of s from its persisted credential. It runs at
// most once per session; concurrent callers return immediately and observe
// the loading state.
func (st *Store) Restore(ctx context.Context, s *Session) {
	gen, ok := s.beginRestore()
	if !ok {
		return
	}
	// a browser closing its first request must not wipe a valid credential
	ctx = context.WithoutCancel(ctx)

	sealed, err := st.persist.Load(ctx, s.ID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			st.lg.Warnw("session load failed", "session", s.ID, "error", err)
		}
		s.finishRestore(gen, nil)
		return
	}
	credential, err := st.sealer.Open(sealed)
	if err == nil {
		var id models.Identity
		id, err = st.auth.Me(gateway.WithCredential(ctx, credential))
		if err == nil {
			id.Credential = credential
			if s.finishRestore(gen, &id) {
				st.lg.Debugw("session restored", "session", s.ID, "user", id.ID)
			}
			return
		}
	}
	st.lg.Infow("session restore rejected", "session", s.ID, "error", err)

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if !s.current(gen) {
		st.lg.Debugw("session restore superseded", "session", s.ID)
		return
	}
	if err := st.persist.Delete(ctx, s.ID); err != nil {
		st.lg.Warnw("session delete failed", "session", s.ID, "error", err)
	}
	s.finishRestore(gen, nil)
}

// SignIn authenticates against the backend. Nothing about s changes unless the
// backend returned both a credential and an identity.
func (st *Store) SignIn(ctx context.Context, s *Session, email, password string) (models.Identity, error) {
	res, err := st.auth.Login(ctx, email, password)
	if err != nil {
		return models.Identity{}, &SignInError{Message: gateway.Message(err, signInFallback), Err: err}
	}
	if res.Token == "" {
		return models.Identity{}, ErrNoToken
	}
	if res.User == nil {
		return models.Identity{}, ErrNoUser
	}
	sealed, err := st.sealer.Seal(res.Token)
	if err != nil {
		return models.Identity{}, &SignInError{Message: signInFallback, Err: err}
	}
	expires := credentialExpiry(res.Token, st.now().Add(st.ttl))
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := st.persist.Save(ctx, s.ID, sealed, expires); err != nil {
		return models.Identity{}, &SignInError{Message: signInFallback, Err: err}
	}
	id := *res.User
	id.Credential = res.Token
	s.signedIn(id)
	st.lg.Infow("signed in", "session", s.ID, "user", id.ID, "role", id.Role)
	return id, nil
}

// SignOut forgets the identity and the persisted credential of s. The backend
// is not told.
func (st *Store) SignOut(ctx context.Context, s *Session) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.clear()
	if err := st.persist.Delete(context.WithoutCancel(ctx), s.ID); err != nil {
		st.lg.Warnw("session delete failed", "session", s.ID, "error", err)
	}
}

// Sweep drops in-memory sessions idle for longer than idle and purges expired
// stored credentials.
func (st *Store) Sweep(ctx context.Context, idle time.Duration) {
	now := st.now()
	cutoff := now.Add(-idle)
	st.mu.Lock()
	for id, s := range st.sessions {
		if s.idleSince(cutoff) {
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()
	if p, ok := st.persist.(Purger); ok {
		if err := p.PurgeExpired(ctx, now); err != nil {
			st.lg.Warnw("session purge failed", "error", err)
		}
	}
}

// Len reports the number of in-memory sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
