package utils

import (
	"context"
	"sync"
	"time"
)

// TokenBlacklist records revoked token ids until their natural expiry.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type MemoryBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		tokens: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, jti string, until time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[jti] = until
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.RLock()
	expiry, exists := b.tokens[jti]
	b.mu.RUnlock()

	if !exists {
		return false, nil
	}
	if b.now().Before(expiry) {
		return true, nil
	}

	b.mu.Lock()
	delete(b.tokens, jti)
	b.mu.Unlock()
	return false, nil
}

// Cleanup drops entries whose token has expired anyway.
func (b *MemoryBlacklist) Cleanup() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	removed := 0
	for jti, expiry := range b.tokens {
		if !now.Before(expiry) {
			delete(b.tokens, jti)
			removed++
		}
	}
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (b *MemoryBlacklist) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := b.Cleanup(); n > 0 {
				InfoLogger.Debugf("removed %d expired entries from token blacklist", n)
			}
		}
	}
}
