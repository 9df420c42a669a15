package auth

import (
	"context"
	"slices"
	"time"

	"github.com/spec-kit/device-cost-service/internal/domain"
	"github.com/spec-kit/device-cost-service/internal/localstore"
)

// SessionsKey is the durable store key holding active sessions.
const SessionsKey = "sessions"

// SessionStore keeps issued sessions in the durable local store so a
// restart does not log everyone out. Expired entries are pruned on write.
type SessionStore struct {
	sessions *localstore.Value[[]domain.Session]
	now      func() time.Time
}

// NewSessionStore binds the session list to store.
func NewSessionStore(store *localstore.Store) *SessionStore {
	return &SessionStore{
		sessions: localstore.NewValue(store, SessionsKey, []domain.Session{}),
		now:      time.Now,
	}
}

// Save records a session.
func (s *SessionStore) Save(ctx context.Context, session domain.Session) {
	now := s.now()
	s.sessions.Update(ctx, func(list []domain.Session) []domain.Session {
		next := slices.DeleteFunc(slices.Clone(list), func(existing domain.Session) bool {
			return existing.Expired(now) || existing.TokenID == session.TokenID
		})
		return append(next, session)
	})
}

// Lookup returns the live session for tokenID.
func (s *SessionStore) Lookup(ctx context.Context, tokenID string) (domain.Session, bool) {
	now := s.now()
	for _, session := range s.sessions.Read(ctx) {
		if session.TokenID == tokenID && !session.Expired(now) {
			return session, true
		}
	}
	return domain.Session{}, false
}

// Revoke removes a session; revoking an unknown id is a no-op.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string) bool {
	removed := false
	s.sessions.Update(ctx, func(list []domain.Session) []domain.Session {
		return slices.DeleteFunc(slices.Clone(list), func(existing domain.Session) bool {
			match := existing.TokenID == tokenID
			removed = removed || match
			return match
		})
	})
	return removed
}
