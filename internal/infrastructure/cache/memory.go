package cache

import (
	"context"
	"sync"
	"time"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
)

// MemoryCallStore keeps active call associations in process memory. Entries
// expire after a TTL so abandoned calls do not accumulate forever.
type MemoryCallStore struct {
	mu    sync.Mutex
	items map[string]*memoryItem
	ttl   time.Duration
}

type memoryItem struct {
	assoc      *entities.CallAssociation
	expireTime time.Time
}

// NewMemoryCallStore creates an in-memory call store. A zero ttl defaults to
// 24 hours, long enough to outlive any real meeting.
func NewMemoryCallStore(ttl time.Duration) *MemoryCallStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	store := &MemoryCallStore{
		items: make(map[string]*memoryItem),
		ttl:   ttl,
	}

	go store.cleanupExpired()

	return store
}

// Put stores the association for a call, replacing any previous entry.
func (ms *MemoryCallStore) Put(ctx context.Context, assoc *entities.CallAssociation) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[assoc.CallID] = &memoryItem{
		assoc:      assoc,
		expireTime: time.Now().Add(ms.ttl),
	}
	return nil
}

// Get returns the association for a call, or nil if absent or expired.
func (ms *MemoryCallStore) Get(ctx context.Context, callID string) (*entities.CallAssociation, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[callID]
	if !exists || time.Now().After(item.expireTime) {
		return nil, nil
	}
	return item.assoc, nil
}

// Remove deletes and returns the association for a call. The delete happens
// under the same lock as the read, so concurrent callers see at most one
// non-nil result per entry.
func (ms *MemoryCallStore) Remove(ctx context.Context, callID string) (*entities.CallAssociation, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[callID]
	if !exists {
		return nil, nil
	}
	delete(ms.items, callID)
	if time.Now().After(item.expireTime) {
		return nil, nil
	}
	return item.assoc, nil
}

func (ms *MemoryCallStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ms.mu.Lock()
		now := time.Now()
		for key, item := range ms.items {
			if now.After(item.expireTime) {
				delete(ms.items, key)
			}
		}
		ms.mu.Unlock()
	}
}
