package testutil

import (
	"context"
	"sync"

	"github.com/signalforge/signalforge/internal/domain/user"
	ierr "github.com/signalforge/signalforge/internal/errors"
)

// InMemoryIdentityStore implements user.IdentityStore for tests. Failures
// can be scripted via UpdateErr / GetErr.
type InMemoryIdentityStore struct {
	mu    sync.RWMutex
	users map[string]*user.IdentityUser

	GetErr    error
	UpdateErr error

	// UpdateCalls records the metadata bags written, in order.
	UpdateCalls []map[string]interface{}
}

func NewInMemoryIdentityStore() *InMemoryIdentityStore {
	return &InMemoryIdentityStore{
		users: make(map[string]*user.IdentityUser),
	}
}

// AddUser seeds a user.
func (s *InMemoryIdentityStore) AddUser(u *user.IdentityUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *InMemoryIdentityStore) GetUserByID(ctx context.Context, userID string) (*user.IdentityUser, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ierr.NewErrorf("user %s not found", userID).
			Mark(ierr.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (s *InMemoryIdentityStore) UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ierr.NewErrorf("user %s not found", userID).
			Mark(ierr.ErrNotFound)
	}
	u.Metadata = metadata
	s.UpdateCalls = append(s.UpdateCalls, metadata)
	return nil
}

// Metadata returns the current bag for a user.
func (s *InMemoryIdentityStore) Metadata(userID string) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return u.Metadata
	}
	return nil
}
