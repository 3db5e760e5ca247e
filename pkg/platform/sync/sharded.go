package sync

import (
	"hash/fnv"
	"sync"
)

const defaultShards = 64

// ShardedMutex serializes work per key without one lock per key. Keys that
// hash to the same shard share a mutex, so holders must never lock a second
// key while holding the first.
type ShardedMutex struct {
	shards []sync.Mutex
	mask   uint32
}

// NewShardedMutex creates a ShardedMutex with 64 shards.
func NewShardedMutex() *ShardedMutex {
	return NewShardedMutexN(defaultShards)
}

// NewShardedMutexN rounds n up to a power of two, minimum 1.
func NewShardedMutexN(n int) *ShardedMutex {
	size := 1
	for size < n {
		size <<= 1
	}
	return &ShardedMutex{
		shards: make([]sync.Mutex, size),
		mask:   uint32(size - 1),
	}
}

func (m *ShardedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

func (m *ShardedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

// Do runs fn while holding key's shard.
func (m *ShardedMutex) Do(key string, fn func()) {
	m.Lock(key)
	defer m.Unlock(key)
	fn()
}

// Shards reports the shard count.
func (m *ShardedMutex) Shards() int {
	return len(m.shards)
}

func (m *ShardedMutex) shardFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() & m.mask
}
