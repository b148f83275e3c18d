// Package usertest provides an in-memory user.Repository for tests.
package usertest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/sudo-init-do/userhub/internal/apperr"
	"github.com/sudo-init-do/userhub/internal/user"
)

// MemoryRepository enforces the same email uniqueness as the users table.
type MemoryRepository struct {
	mu    sync.Mutex
	byID  map[string]*user.User
	Calls map[string]int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[string]*user.User),
		Calls: make(map[string]int),
	}
}

func (m *MemoryRepository) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["Create"]++

	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return oops.Code(apperr.CodeEmailTaken).Errorf("Email has already been registered")
		}
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	m.byID[u.ID] = clone(u)
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["GetByID"]++

	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return clone(u), nil
}

func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["GetByEmail"]++

	for _, u := range m.byID {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *MemoryRepository) Update(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["Update"]++

	if _, ok := m.byID[u.ID]; !ok {
		return user.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = clone(u)
	return nil
}

func (m *MemoryRepository) Search(_ context.Context, query, excludeID string) ([]*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["Search"]++

	q := strings.ToLower(query)
	var out []*user.User
	for id, u := range m.byID {
		if id == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a user, simulating an account deleted after a token was issued.
func (m *MemoryRepository) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

// Len returns the number of stored users.
func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func clone(u *user.User) *user.User {
	cp := *u
	cp.Friends = append([]string(nil), u.Friends...)
	return &cp
}
