package store

import (
	"field-match/internal/domain/user"

	"github.com/google/uuid"
)

// PutUser registers u. It reports false when the ID is already registered.
func (s *Store) PutUser(u user.User) bool {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return false
	}
	s.users[u.ID] = u
	return true
}

func (s *Store) GetUser(id uuid.UUID) (user.User, bool) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) UserExists(id uuid.UUID) bool {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	_, ok := s.users[id]
	return ok
}
