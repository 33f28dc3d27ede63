package rewards

import (
	"context"
	"sync"

	v1 "github.com/rewardex-lab/rewardex/internal/api/v1"
)

// TransactionSource supplies the full transaction set for aggregation.
// Both the Postgres and in-memory stores satisfy it.
type TransactionSource interface {
	LoadAll(ctx context.Context) ([]v1.Transaction, error)
}

// Cache is an explicit snapshot cache over a TransactionSource. The first
// Load fetches and verifies the whole set; later Loads return the cached
// snapshot until Invalidate is called. The write path must call Invalidate
// after every insert so aggregation never reads a stale set.
type Cache struct {
	source TransactionSource

	mu     sync.RWMutex
	txns   []v1.Transaction
	loaded bool
}

// NewCache creates a snapshot cache over the given source.
func NewCache(source TransactionSource) *Cache {
	if source == nil {
		panic("rewards: transaction source must not be nil")
	}
	return &Cache{source: source}
}

// Load returns the cached transaction snapshot, fetching and verifying it
// from the source on a cache miss. Verification is fail-fast: one row with
// bad points rejects the whole load and nothing is cached.
func (c *Cache) Load(ctx context.Context) ([]v1.Transaction, error) {
	c.mu.RLock()
	if c.loaded {
		txns := c.txns
		c.mu.RUnlock()
		return txns, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another loader may have won the race between the two locks.
	if c.loaded {
		return c.txns, nil
	}

	txns, err := c.source.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := VerifyPoints(txns); err != nil {
		return nil, err
	}

	c.txns = txns
	c.loaded = true
	return txns, nil
}

// Invalidate drops the cached snapshot. The next Load hits the source again.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txns = nil
	c.loaded = false
}
