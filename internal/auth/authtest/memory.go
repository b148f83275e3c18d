// Package authtest provides an in-memory auth.ResetRepository for tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/sudo-init-do/userhub/internal/auth"
)

type MemoryResetRepository struct {
	mu     sync.Mutex
	tokens map[string]auth.ResetToken
}

func NewMemoryResetRepository() *MemoryResetRepository {
	return &MemoryResetRepository{tokens: make(map[string]auth.ResetToken)}
}

func (m *MemoryResetRepository) Create(_ context.Context, token *auth.ResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.ID] = *token
	return nil
}

func (m *MemoryResetRepository) FindActive(_ context.Context, tokenHash string, now time.Time) (*auth.ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.TokenHash == tokenHash && t.ExpiresAt.After(now) {
			found := t
			return &found, nil
		}
	}
	return nil, auth.ErrResetNotFound
}

func (m *MemoryResetRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[id]; !ok {
		return auth.ErrResetNotFound
	}
	delete(m.tokens, id)
	return nil
}

func (m *MemoryResetRepository) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, id)
		}
	}
	return nil
}

func (m *MemoryResetRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, t := range m.tokens {
		if !t.ExpiresAt.After(now) {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

// Tokens returns a snapshot of the stored tokens.
func (m *MemoryResetRepository) Tokens() []auth.ResetToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]auth.ResetToken, 0, len(m.tokens))
	for _, t := range m.tokens {
		out = append(out, t)
	}
	return out
}

var _ auth.ResetRepository = (*MemoryResetRepository)(nil)
