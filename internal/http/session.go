package http

import (
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"coachpay/internal/cache"
	"coachpay/internal/core"

	"github.com/google/uuid"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "coachpay_session"

// AccessLevel is what the gate grants a session. Admin implies operator.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessOperator
	AccessAdmin
)

func (a AccessLevel) IsOperator() bool { return a >= AccessOperator }
func (a AccessLevel) IsAdmin() bool    { return a >= AccessAdmin }

func (a AccessLevel) String() string {
	switch a {
	case AccessOperator:
		return "operator"
	case AccessAdmin:
		return "admin"
	default:
		return "none"
	}
}

// Gate compares a shared phrase against the operator and admin phrases.
type Gate struct {
	operator []byte
	admin    []byte
}

func NewGate(operatorPhrase, adminPhrase string) Gate {
	return Gate{operator: []byte(operatorPhrase), admin: []byte(adminPhrase)}
}

// Check returns the access level a phrase grants.
func (g Gate) Check(phrase string) AccessLevel {
	p := []byte(phrase)
	switch {
	case len(g.admin) > 0 && subtle.ConstantTimeCompare(p, g.admin) == 1:
		return AccessAdmin
	case len(g.operator) > 0 && subtle.ConstantTimeCompare(p, g.operator) == 1:
		return AccessOperator
	default:
		return AccessNone
	}
}

// Session is the per browser state: the granted access level and one day
// selection per form block and month.
type Session struct {
	ID string

	mu     sync.Mutex
	access AccessLevel
	days   map[selectionKey]*core.DaySelection
}

type selectionKey struct {
	block int
	month core.Month
}

func newSession() *Session {
	return &Session{ID: uuid.NewString(), days: make(map[selectionKey]*core.DaySelection)}
}

func (s *Session) Access() AccessLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

func (s *Session) SetAccess(a AccessLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = a
}

// Selection returns the calendar selection of a block for month, creating
// it on first use. Days picked under another month never leak into it.
func (s *Session) Selection(block int, month core.Month) *core.DaySelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := selectionKey{block: block, month: month}
	sel, ok := s.days[key]
	if !ok {
		sel = core.NewDaySelection()
		s.days[key] = sel
	}
	return sel
}

// ResetSelections drops every block's calendar selection.
func (s *Session) ResetSelections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days = make(map[selectionKey]*core.DaySelection)
}

// SessionStore keeps sessions in a TTL bounded LRU. Every lookup slides the
// expiry forward.
type SessionStore struct {
	cache  *cache.LRUCache[*Session]
	ttl    time.Duration
	secure bool
}

func NewSessionStore(maxSessions int, ttl time.Duration, secure bool, opts ...cache.LRUOption) *SessionStore {
	opts = append([]cache.LRUOption{cache.WithSlidingExpiration()}, opts...)
	return &SessionStore{
		cache:  cache.NewLRUCache[*Session](maxSessions, ttl, opts...),
		ttl:    ttl,
		secure: secure,
	}
}

// Lookup returns the session named by the request cookie, or nil.
func (st *SessionStore) Lookup(r *http.Request) *Session {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	sess, ok := st.cache.Get(c.Value)
	if !ok {
		return nil
	}
	return sess
}

// Start returns the request's session, creating one and setting the cookie
// when there is none.
func (st *SessionStore) Start(w http.ResponseWriter, r *http.Request) *Session {
	if sess := st.Lookup(r); sess != nil {
		return sess
	}
	sess := newSession()
	st.cache.Set(sess.ID, sess)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(st.ttl.Seconds()),
		HttpOnly: true,
		Secure:   st.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// Destroy forgets the request's session and expires the cookie.
func (st *SessionStore) Destroy(w http.ResponseWriter, r *http.Request) {
	if sess := st.Lookup(r); sess != nil {
		st.cache.Delete(sess.ID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   st.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Size returns the number of live sessions.
func (st *SessionStore) Size() int { return st.cache.Size() }

// Cleaner exposes the underlying cache to a cache.Janitor.
func (st *SessionStore) Cleaner() cache.Cleaner { return st.cache }
