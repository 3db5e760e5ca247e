package sync

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestShardCountRoundsUpToPowerOfTwo(t *testing.T) {
	for n, want := range map[int]int{0: 1, 1: 1, 3: 4, 32: 32, 33: 64} {
		assert.Equal(t, want, NewShardedMutexN(n).Shards(), fmt.Sprint(n))
	}
	assert.Equal(t, 64, NewShardedMutex().Shards())
}

func TestSameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	id := uuid.NewString()
	counter := 0

	var wg sync.WaitGroup
	for range 200 {
		wg.Go(func() {
			m.Do(id, func() { counter++ })
		})
	}
	wg.Wait()

	assert.Equal(t, 200, counter)
}

func TestShardForIsStableAndSpreads(t *testing.T) {
	m := NewShardedMutex()
	id := uuid.NewString()
	assert.Equal(t, m.shardFor(id), m.shardFor(id))

	shards := make(map[uint32]struct{})
	for range 64 {
		shards[m.shardFor(uuid.NewString())] = struct{}{}
	}
	assert.Greater(t, len(shards), 16, "session IDs should spread across shards")
}

func TestSingleShardStillLocks(t *testing.T) {
	m := NewShardedMutexN(1)
	m.Lock("a")
	m.Unlock("b")
	m.Do("", func() {})
}
