package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/competitive-edge/backend/internal/domain"
)

// batchEntry is one product's discovery batch with its expiration.
type batchEntry struct {
	candidates []domain.CandidateListing
	expiration time.Time
}

// CandidateCache is a thread-safe in-memory store of discovery batches keyed
// by product id. A batch is a single unit: installing a new one replaces the
// previous batch wholesale (last-write-wins), and approving a candidate
// removes exactly that candidate. Access is partitioned by product id, so
// there is no cross-product contention.
type CandidateCache struct {
	ttl     time.Duration
	mutex   sync.RWMutex
	batches map[uuid.UUID]batchEntry
}

// NewCandidateCache creates a candidate cache. Batches expire after ttl
// (default 1 hour) so abandoned discovery runs do not pin memory.
func NewCandidateCache(ttl time.Duration) *CandidateCache {
	if ttl <= 0 {
		ttl = time.Hour
	}

	cache := &CandidateCache{
		ttl:     ttl,
		batches: make(map[uuid.UUID]batchEntry),
	}

	// Cleanup goroutine removes expired batches every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Install replaces the product's cached batch with the given one. The slice
// is copied so later mutation by the caller cannot tear the batch.
func (c *CandidateCache) Install(productID uuid.UUID, batch []domain.CandidateListing) {
	copied := make([]domain.CandidateListing, len(batch))
	copy(copied, batch)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.batches[productID] = batchEntry{
		candidates: copied,
		expiration: time.Now().Add(c.ttl),
	}
}

// Batch returns a copy of the product's current batch. An absent or expired
// batch reports ok=false.
func (c *CandidateCache) Batch(productID uuid.UUID) ([]domain.CandidateListing, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.batches[productID]
	if !exists || time.Now().After(entry.expiration) {
		return nil, false
	}

	copied := make([]domain.CandidateListing, len(entry.candidates))
	copy(copied, entry.candidates)
	return copied, true
}

// Remove deletes the candidate with the given URL from the product's batch,
// leaving the other candidates' scores and order untouched. It reports
// whether a candidate was removed.
func (c *CandidateCache) Remove(productID uuid.UUID, url string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.batches[productID]
	if !exists || time.Now().After(entry.expiration) {
		return false
	}

	for i, candidate := range entry.candidates {
		if candidate.URL == url {
			entry.candidates = append(entry.candidates[:i], entry.candidates[i+1:]...)
			c.batches[productID] = entry
			return true
		}
	}
	return false
}

// Invalidate drops the product's batch entirely.
func (c *CandidateCache) Invalidate(productID uuid.UUID) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.batches, productID)
}

// Size returns the number of cached batches (for debugging/monitoring)
func (c *CandidateCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.batches)
}

// cleanupExpired removes expired batches periodically
func (c *CandidateCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for productID, entry := range c.batches {
			if now.After(entry.expiration) {
				delete(c.batches, productID)
			}
		}
		c.mutex.Unlock()
	}
}
