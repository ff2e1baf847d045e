package client

import (
	"sync"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

type SessionState int

const (
	SessionAbsent SessionState = iota
	SessionPopulated
	SessionCleared
)

func (s SessionState) String() string {
	switch s {
	case SessionPopulated:
		return "populated"
	case SessionCleared:
		return "cleared"
	default:
		return "absent"
	}
}

// Session holds the bearer token and the signed-in user. It starts absent,
// becomes populated on login or register, and is cleared on logout or when
// the API rejects the token.
type Session struct {
	mu    sync.RWMutex
	state SessionState
	token string
	user  *types.UserView
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Populate(token string, user *types.UserView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionPopulated
	s.token = token
	s.user = copyUser(user)
}

// SetUser replaces the cached user after a profile edit. It is a no-op unless
// the session is populated.
func (s *Session) SetUser(user *types.UserView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionPopulated {
		return
	}
	s.user = copyUser(user)
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionAbsent {
		return
	}
	s.state = SessionCleared
	s.token = ""
	s.user = nil
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *types.UserView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

func copyUser(u *types.UserView) *types.UserView {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
