package memory

import (
	"context"
	"sync"

	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

// sessionStore serialises mutations per session id, so concurrent requests
// of the same client cannot lose cart updates. The store-wide lock only
// guards the map; work on one session never waits for another.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu   sync.Mutex
	sess *domain.Session
}

func NewSessionStore() interfaces.SessionStore {
	return &sessionStore{sessions: make(map[string]*sessionEntry)}
}

func (s *sessionStore) entry(id string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		e = &sessionEntry{}
		s.sessions[id] = e
	}
	return e
}

// Get returns a detached copy. Unknown ids yield a fresh guest session that
// is not stored until the first Update.
func (s *sessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return domain.NewGuestSession(id), nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return domain.NewGuestSession(id), nil
	}
	return copySession(e.sess), nil
}

// Update applies fn to a working copy and stores it only when fn succeeds.
// fn runs under the session's own lock.
func (s *sessionStore) Update(ctx context.Context, id string, fn func(sess *domain.Session) error) error {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.sess
	if current == nil {
		current = domain.NewGuestSession(id)
	}

	work := copySession(current)
	if err := fn(work); err != nil {
		return err
	}
	e.sess = work
	return nil
}

func copySession(src *domain.Session) *domain.Session {
	c := *src
	if src.Profile != nil {
		p := *src.Profile
		c.Profile = &p
	}
	c.Cart = domain.NewCart()
	if src.Cart != nil {
		c.Cart = src.Cart.Clone()
	}
	return &c
}
