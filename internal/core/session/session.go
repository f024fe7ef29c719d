// Package session holds the per-browser credential slot: the backend access
// token and the backend cookies that make a refresh call credentialed.
//
// A Session is created by a Manager once per browser session and handed
// explicitly to every call that talks to the backend.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the persisted form of a Session.
type State struct {
	Token   string            `json:"token,omitempty" bson:"token,omitempty"`
	Cookies map[string]string `json:"cookies,omitempty" bson:"cookies,omitempty"`
}

// Session is safe for concurrent use.
type Session struct {
	id      string
	decoder *Decoder
	now     func() time.Time
	log     zerolog.Logger

	mu      sync.Mutex
	token   string
	cookies map[string]string
	dirty   bool
}

// New builds a Session from persisted state.
func New(id string, st State, decoder *Decoder, now func() time.Time, log zerolog.Logger) *Session {
	if now == nil {
		now = time.Now
	}
	cookies := make(map[string]string, len(st.Cookies))
	for k, v := range st.Cookies {
		cookies[k] = v
	}
	return &Session{
		id:      id,
		decoder: decoder,
		now:     now,
		log:     log,
		token:   st.Token,
		cookies: cookies,
	}
}

func (s *Session) ID() string { return s.id }

// SetToken stores token as the current credential. It is not validated.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.dirty = true
}

// Token returns the stored token, if any.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// RemoveToken clears the credential.
func (s *Session) RemoveToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		s.token = ""
		s.dirty = true
	}
}

// clear forgets the token and cookies without marking the session dirty.
func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.cookies = make(map[string]string)
	s.dirty = false
}

// User decodes the stored token. It reports false when there is no token, the
// token does not decode, or the token has expired; an expired token is removed.
func (s *Session) User() (*Claims, bool) {
	claims, err := s.Claims()
	if err != nil {
		return nil, false
	}
	return claims, true
}

// Claims is User with the reason for an absent user. It returns
// domain.ErrSessionNotFound without a token, domain.ErrInvalidToken when
// decoding fails and domain.ErrTokenExpired for an expired token.
func (s *Session) Claims() (*Claims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return nil, errNoToken
	}
	claims, err := s.decoder.Decode(s.token)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", s.id).Msg("decode access token")
		return nil, err
	}
	if claims.Expired(s.now()) {
		s.token = ""
		s.dirty = true
		return nil, errExpired
	}
	return claims, nil
}

// Cookies returns the backend cookies to send with the next request.
func (s *Session) Cookies() []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*http.Cookie, 0, len(s.cookies))
	for name, value := range s.cookies {
		out = append(out, &http.Cookie{Name: name, Value: value})
	}
	return out
}

// StoreCookies records cookies set by the backend. A cookie that is already
// expired or has a negative MaxAge deletes the stored entry.
func (s *Session) StoreCookies(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, c := range cookies {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now)) {
			delete(s.cookies, c.Name)
		} else {
			s.cookies[c.Name] = c.Value
		}
		s.dirty = true
	}
}

// Dirty reports whether the session changed since it was loaded or saved.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Snapshot returns the state to persist and marks the session clean.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	cookies := make(map[string]string, len(s.cookies))
	for k, v := range s.cookies {
		cookies[k] = v
	}
	s.dirty = false
	return State{Token: s.token, Cookies: cookies}
}
