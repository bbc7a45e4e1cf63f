package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := New()
	const workers = 32
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock(7)
			counter++ // safe only if the lock serializes
			km.Unlock(7)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedMutex_DifferentKeysDoNotBlock(t *testing.T) {
	km := New()
	km.Lock(1)

	done := make(chan struct{})
	go func() {
		km.Lock(2)
		km.Unlock(2)
		close(done)
	}()

	<-done // would deadlock if key 2 waited on key 1
	km.Unlock(1)
}

func TestKeyedMutex_EntriesAreReclaimed(t *testing.T) {
	km := New()
	km.Lock(9)
	km.Unlock(9)

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.entries)
}

func TestKeyedMutex_UnlockUnheldPanics(t *testing.T) {
	km := New()

	assert.Panics(t, func() { km.Unlock(5) })
}
