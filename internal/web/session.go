package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mahasiswa-app/mhs/internal/controller"
)

// CookieName holds the session id.
const CookieName = "mhs_session"

// session is one browser tab group: a page view, its controller and a lock
// that keeps their calls in sequence.
type session struct {
	mu       sync.Mutex
	id       string
	origin   string
	view     *pageView
	ctrl     *controller.Controller
	loaded   bool
	lastSeen time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*session
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{ttl: ttl, sessions: make(map[string]*session)}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// get returns the session for id, or nil.
func (st *sessionStore) get(id string) *session {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess := st.sessions[id]
	if sess != nil {
		sess.lastSeen = time.Now()
	}
	return sess
}

// add stores a new session and drops the idle ones.
func (st *sessionStore) add(sess *session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	for id, old := range st.sessions {
		if now.Sub(old.lastSeen) > st.ttl {
			delete(st.sessions, id)
		}
	}
	sess.lastSeen = now
	st.sessions[sess.id] = sess
}

// session returns the caller's session, creating one (and setting the
// cookie) on first visit.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session {
	if c, err := r.Cookie(CookieName); err == nil {
		if sess := s.sessions.get(c.Value); sess != nil {
			return sess
		}
	}

	view := newPageView()
	sess := &session{
		id:     uuid.NewString(),
		origin: uuid.NewString(),
		view:   view,
	}
	sess.ctrl = controller.New(s.store, view, &controller.Config{
		Logger:   s.logger,
		OnChange: s.notifyChange(sess.origin),
	})
	sess.ctrl.ResetForm()
	s.sessions.add(sess)

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}
