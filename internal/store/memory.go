package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ayush/auth-service/internal/models"
)

// MemoryStore keeps accounts in process memory. Uniqueness is checked and the
// insert performed under one lock, so concurrent conflicting inserts admit
// exactly one winner.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*models.Account
	byEmail    map[string]string
	byUsername map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*models.Account),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func (s *MemoryStore) FindByEmailOrUsername(_ context.Context, email, username string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byEmail[strings.ToLower(email)]; ok {
		return clone(s.byID[id]), nil
	}
	if id, ok := s.byUsername[strings.ToLower(username)]; ok {
		return clone(s.byID[id]), nil
	}
	return nil, models.ErrAccountNotFound
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.byID[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	return clone(acct), nil
}

func (s *MemoryStore) InsertUnique(_ context.Context, account *models.Account) (*models.Account, error) {
	email := strings.ToLower(account.Email)
	username := strings.ToLower(account.Username)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[email]; taken {
		return nil, models.ErrAccountExists
	}
	if _, taken := s.byUsername[username]; taken {
		return nil, models.ErrAccountExists
	}

	stored := clone(account)
	stored.ID = uuid.NewString()
	stored.Email = email
	stored.Username = username
	s.byID[stored.ID] = stored
	s.byEmail[email] = stored.ID
	s.byUsername[username] = stored.ID
	return clone(stored), nil
}

// Len returns the number of stored accounts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func clone(a *models.Account) *models.Account {
	c := *a
	return &c
}
