package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/billing"
)

type lockEntry struct {
	token     uuid.UUID
	expiresAt time.Time
}

// InMemoryGenerationLock implements billing.GenerationLock for a single process
// and for tests. Expired entries are replaced on the next Acquire.
type InMemoryGenerationLock struct {
	mu      sync.Mutex
	entries map[string]lockEntry
	now     func() time.Time
}

// NewInMemoryGenerationLock creates an empty in-process lock table
func NewInMemoryGenerationLock() *InMemoryGenerationLock {
	return &InMemoryGenerationLock{
		entries: make(map[string]lockEntry),
		now:     time.Now,
	}
}

// Acquire takes the lock for ttl, or reports ok=false if an unexpired holder exists
func (l *InMemoryGenerationLock) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, exists := l.entries[key]; exists && now.Before(e.expiresAt) {
		return nil, false, nil
	}

	token := uuid.New()
	l.entries[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e, exists := l.entries[key]; exists && e.token == token {
			delete(l.entries, key)
		}
		return nil
	}
	return release, true, nil
}

// Size returns the number of held or expired-but-unreclaimed entries
func (l *InMemoryGenerationLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

var _ billing.GenerationLock = (*InMemoryGenerationLock)(nil)
