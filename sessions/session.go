package sessions

import (
	"context"
	"time"
)

// Session is the per-request handle on a client's server side session.
// It is not safe for concurrent use; each request owns its own handle.
type Session struct {
	id           string
	data         Data
	dirty        bool
	stored       bool // present in the store
	expireCookie bool
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) IsAuthenticated() bool {
	return s.data.Authenticated()
}

func (s *Session) AccountID() int64 {
	return s.data.AccountID
}

func (s *Session) AccountUUID() string {
	return s.data.AccountUUID
}

func (s *Session) DisplayName() string {
	return s.data.DisplayName
}

func (s *Session) IsSuperadmin() bool {
	return s.data.IsSuperadmin
}

func (s *Session) LastActivity() time.Time {
	return s.data.LastActivity
}

func (s *Session) CSRFToken() string {
	return s.data.CSRFToken
}

func (s *Session) SetCSRFToken(token string) {
	s.data.CSRFToken = token
	s.dirty = true
}

// AddFlash queues msg under kind until the next PopFlashes
func (s *Session) AddFlash(kind FlashKind, msg string) {
	if s.data.Flashes == nil {
		s.data.Flashes = make(map[FlashKind][]string)
	}
	s.data.Flashes[kind] = append(s.data.Flashes[kind], msg)
	s.dirty = true
}

// PopFlashes returns and removes every pending flash message, in the order added per kind
func (s *Session) PopFlashes() map[FlashKind][]string {
	flashes := s.data.Flashes
	if len(flashes) == 0 {
		return map[FlashKind][]string{}
	}
	s.data.Flashes = nil
	s.dirty = true
	return flashes
}

func (s *Session) LastLoginAttempt() string {
	return s.data.LastLoginAttempt
}

func (s *Session) SetLastLoginAttempt(login string) {
	s.data.LastLoginAttempt = login
	s.dirty = true
}

// Dirty reports whether the session has unsaved changes
func (s *Session) Dirty() bool {
	return s.dirty
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session installed by NewContext
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
