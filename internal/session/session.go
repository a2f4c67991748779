package session

import (
	"sync"
	"time"

	"ddportal/internal/checklist"
	"ddportal/internal/models"
)

// State is the restoration lifecycle of a browser session.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a transient banner shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

// Session is the server-side state of one browser. Identity and the persisted
// credential are written only through Store.
type Session struct {
	ID string

	// persistMu orders writes of the stored credential against a running
	// restore.
	persistMu sync.Mutex

	mu       sync.RWMutex
	state    State
	gen      uint64
	identity *models.Identity
	board    *checklist.Board
	flashes  []Flash
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, lastSeen: now}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading reports whether the identity is not known yet.
func (s *Session) Loading() bool {
	return s.State() != StateReady
}

// Identity returns a copy of the signed-in identity.
func (s *Session) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

func (s *Session) AddFlash(kind, message string) {
	s.mu.Lock()
	s.flashes = append(s.flashes, Flash{Kind: kind, Message: message})
	s.mu.Unlock()
}

// TakeFlashes returns and clears the queued banners.
func (s *Session) TakeFlashes() []Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes
	s.flashes = nil
	return out
}

// Board is the last checklist dashboard state shown to this session.
func (s *Session) Board() *checklist.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board
}

func (s *Session) SetBoard(b *checklist.Board) {
	s.mu.Lock()
	s.board = b
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(t time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen.Before(t) && s.state != StateLoading
}

// beginRestore moves an uninitialized session to loading. Only the caller
// that gets true performs the restoration, under the returned generation.
func (s *Session) beginRestore() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUninitialized {
		return 0, false
	}
	s.state = StateLoading
	return s.gen, true
}

// current reports whether no sign-in or sign-out happened since gen.
func (s *Session) current(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen == gen
}

// finishRestore applies the outcome of the restore started at gen. It is
// dropped when a sign-in or sign-out superseded that restore.
func (s *Session) finishRestore(gen uint64, id *models.Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.identity = id
	s.state = StateReady
	return true
}

func (s *Session) signedIn(id models.Identity) {
	s.mu.Lock()
	s.identity = &id
	s.board = nil
	s.state = StateReady
	s.gen++
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.mu.Lock()
	s.identity = nil
	s.board = nil
	s.state = StateReady
	s.gen++
	s.mu.Unlock()
}
