// Package session tracks issued token IDs so the backend can force-expire
// sessions on password change and account deletion.
package session

import (
	"sync"

	"github.com/google/uuid"
)

type Store interface {
	Register(userID uuid.UUID, jti string)
	Valid(jti string) bool
	Revoke(jti string)
	RevokeUser(userID uuid.UUID)
	RevokeOthers(userID uuid.UUID, keepJTI string)
}

type memoryStore struct {
	mu     sync.RWMutex
	byJTI  map[string]uuid.UUID
	byUser map[uuid.UUID]map[string]struct{}
}

func NewMemory() Store {
	return &memoryStore{
		byJTI:  make(map[string]uuid.UUID),
		byUser: make(map[uuid.UUID]map[string]struct{}),
	}
}

func (s *memoryStore) Register(userID uuid.UUID, jti string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byJTI[jti] = userID
	if s.byUser[userID] == nil {
		s.byUser[userID] = make(map[string]struct{})
	}
	s.byUser[userID][jti] = struct{}{}
}

func (s *memoryStore) Valid(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byJTI[jti]
	return ok
}

func (s *memoryStore) Revoke(jti string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(jti)
}

func (s *memoryStore) RevokeUser(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti := range s.byUser[userID] {
		delete(s.byJTI, jti)
	}
	delete(s.byUser, userID)
}

func (s *memoryStore) RevokeOthers(userID uuid.UUID, keepJTI string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti := range s.byUser[userID] {
		if jti != keepJTI {
			s.remove(jti)
		}
	}
}

func (s *memoryStore) remove(jti string) {
	userID, ok := s.byJTI[jti]
	if !ok {
		return
	}
	delete(s.byJTI, jti)
	if set := s.byUser[userID]; set != nil {
		delete(set, jti)
		if len(set) == 0 {
			delete(s.byUser, userID)
		}
	}
}
