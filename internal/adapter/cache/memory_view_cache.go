package cache

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
)

// MemoryViewCache is a process-local dedup cache for single-replica deployments.
// Entries expire after their ttl; when full, expired entries are swept and, failing that,
// the entry closest to expiry is evicted. A min-heap on expiry keeps both O(log n).
type MemoryViewCache struct {
	mu         sync.Mutex
	entries    map[string]*expiryItem
	expiries   expiryHeap
	maxEntries int
	now        func() time.Time

	stop chan struct{}
	once sync.Once
}

func NewMemoryViewCache(maxEntries int) *MemoryViewCache {
	if maxEntries <= 0 {
		maxEntries = 100000
	}
	return &MemoryViewCache{
		entries:    make(map[string]*expiryItem),
		maxEntries: maxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
}

var _ repository.ViewDedupCache = (*MemoryViewCache)(nil)

func (m *MemoryViewCache) SetIfAbsent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if item, ok := m.entries[key]; ok {
		if now.Before(item.expires) {
			return false, nil
		}
		item.expires = now.Add(ttl)
		heap.Fix(&m.expiries, item.index)
		return true, nil
	}

	if len(m.entries) >= m.maxEntries {
		m.sweepLocked(now)
		if len(m.entries) >= m.maxEntries {
			m.evictOldestLocked()
		}
	}
	item := &expiryItem{key: key, expires: now.Add(ttl)}
	heap.Push(&m.expiries, item)
	m.entries[key] = item
	return true, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryViewCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// StartJanitor sweeps expired entries every interval until Close is called.
func (m *MemoryViewCache) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.mu.Lock()
				m.sweepLocked(m.now())
				m.mu.Unlock()
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *MemoryViewCache) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *MemoryViewCache) sweepLocked(now time.Time) {
	for len(m.expiries) > 0 && !now.Before(m.expiries[0].expires) {
		m.evictOldestLocked()
	}
}

func (m *MemoryViewCache) evictOldestLocked() {
	if len(m.expiries) == 0 {
		return
	}
	item := heap.Pop(&m.expiries).(*expiryItem)
	delete(m.entries, item.key)
}

type expiryItem struct {
	key     string
	expires time.Time
	index   int
}

// expiryHeap orders entries by expiry, soonest first.
type expiryHeap []*expiryItem

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].expires.Before(h[j].expires) }

func (h expiryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *expiryHeap) Push(x any) {
	item := x.(*expiryItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
