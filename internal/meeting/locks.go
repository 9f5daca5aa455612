package meeting

import (
	"sync"

	"github.com/prototypeforge/aicxo/internal/types"
)

// keyedMutex serializes operations per meeting so a regenerate and a
// restore racing on the same meeting cannot interleave their
// read-modify-write cycles. Different meetings proceed independently.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[types.ID]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[types.ID]*entry)}
}

// Lock acquires the mutex for key, blocking until available.
// The returned function releases it.
func (k *keyedMutex) Lock(key types.ID) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
