// Package keylock serializes work per key, used to guarantee that two
// indexing runs for the same document never interleave while indexing
// of different documents stays fully parallel.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

type KeyedMutex struct {
	mu      sync.Mutex
	entries map[uint]*entry
}

func New() *KeyedMutex {
	return &KeyedMutex{entries: make(map[uint]*entry)}
}

func (k *KeyedMutex) Lock(id uint) {
	k.mu.Lock()
	e := k.entries[id]
	if e == nil {
		e = &entry{}
		k.entries[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *KeyedMutex) Unlock(id uint) {
	k.mu.Lock()
	e := k.entries[id]
	if e == nil {
		k.mu.Unlock()
		panic("keylock: unlock of unheld key")
	}
	e.refs--
	if e.refs == 0 {
		delete(k.entries, id)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
