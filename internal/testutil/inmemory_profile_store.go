package testutil

import (
	"context"
	"sync"

	"github.com/signalforge/signalforge/internal/domain/user"
	ierr "github.com/signalforge/signalforge/internal/errors"
)

// InMemoryProfileStore implements user.ProfileRepository for tests.
type InMemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*user.Profile

	UpsertErr   error
	UpsertCalls int
}

func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{
		profiles: make(map[string]*user.Profile),
	}
}

func (s *InMemoryProfileStore) Upsert(ctx context.Context, profile *user.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpsertCalls++

	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	if profile == nil || profile.UserID == "" {
		return ierr.NewError("profile user id is required").
			Mark(ierr.ErrValidation)
	}

	copied := *profile
	s.profiles[profile.UserID] = &copied
	return nil
}

// Get returns the stored row for a user, or nil.
func (s *InMemoryProfileStore) Get(userID string) *user.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[userID]
}
