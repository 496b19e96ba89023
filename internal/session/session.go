// Package session holds the signed-in user and broadcasts changes to it.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/internal/storage"
)

// Cache persists the current user between runs
type Cache interface {
	CurrentUser(ctx context.Context) (*models.User, error)
	SaveCurrentUser(ctx context.Context, user models.User) error
	ClearCurrentUser(ctx context.Context) error
}

// Session is safe for concurrent use. Subscribers receive the latest value
// only; intermediate updates may be coalesced.
type Session struct {
	mu     sync.RWMutex
	user   *models.User
	cache  Cache
	subs   map[int]chan *models.User
	nextID int
}

// New returns an empty session. cache may be nil.
func New(cache Cache) *Session {
	return &Session{
		cache: cache,
		subs:  make(map[int]chan *models.User),
	}
}

// Restore loads the cached user, if any
func (s *Session) Restore(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	user, err := s.cache.CurrentUser(ctx)
	if errors.Is(err, storage.ErrNoCurrentUser) {
		return nil
	}
	if err != nil {
		return err
	}
	s.publish(user)
	return nil
}

// Current returns a copy of the current user or nil
func (s *Session) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.user)
}

// Set replaces the current user and persists it. Persistence failures are
// logged; the in-memory value is updated regardless.
func (s *Session) Set(ctx context.Context, user models.User) {
	if s.cache != nil {
		if err := s.cache.SaveCurrentUser(ctx, user); err != nil {
			logger.Warn("failed to cache current user", "error", err)
		}
	}
	s.publish(&user)
}

// Clear forgets the current user
func (s *Session) Clear(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.ClearCurrentUser(ctx); err != nil {
			logger.Warn("failed to clear cached user", "error", err)
		}
	}
	s.publish(nil)
}

// Subscribe returns a channel that receives the current user immediately and
// after every change. Call the returned func to unsubscribe.
func (s *Session) Subscribe() (<-chan *models.User, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan *models.User, 1)
	ch <- clone(s.user)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Session) publish(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = clone(user)
	for _, ch := range s.subs {
		// drop the stale value so the send never blocks
		select {
		case <-ch:
		default:
		}
		ch <- clone(user)
	}
}

func clone(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
