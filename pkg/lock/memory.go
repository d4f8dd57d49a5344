package lock

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const memoryStoreShards = 16

// MemoryStore is an in-process Store backed by a sharded map with lazy
// expiry. It is intended for single-instance deployments and tests; use
// RedisStore when multiple instances must share the anti-replay window.
type MemoryStore struct {
	shards [memoryStoreShards]*memoryShard
	now    func() time.Time
}

type memoryShard struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

// NewMemoryStore creates an empty in-memory lock store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for i := range s.shards {
		s.shards[i] = &memoryShard{expires: make(map[string]time.Time)}
	}
	return s
}

func (s *MemoryStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return s.shards[h.Sum32()%memoryStoreShards]
}

// Acquire sets the key if it is absent or expired. The check and set run
// under the shard lock, giving the same atomicity as a remote
// set-if-absent.
func (s *MemoryStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	shard := s.shard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	now := s.now()
	if expiry, exists := shard.expires[key]; exists && now.Before(expiry) {
		return false, nil
	}
	shard.expires[key] = now.Add(ttl)
	return true, nil
}

// Release removes the key.
func (s *MemoryStore) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	shard := s.shard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	delete(shard.expires, key)
	return nil
}

// Len returns the number of tracked keys, counting expired entries that
// have not been collected yet.
func (s *MemoryStore) Len() int {
	n := 0
	for _, shard := range s.shards {
		shard.mu.Lock()
		n += len(shard.expires)
		shard.mu.Unlock()
	}
	return n
}
