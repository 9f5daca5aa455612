package meeting

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prototypeforge/aicxo/internal/types"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := newKeyedMutex()
	key := types.NewID()

	unlock := km.Lock(key)

	acquired := make(chan struct{})
	go func() {
		second := km.Lock(key)
		close(acquired)
		second()
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock acquired while first was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock never acquired after release")
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	km := newKeyedMutex()

	unlockA := km.Lock(types.NewID())
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := km.Lock(types.NewID())
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestKeyedMutex_CleansUpReleasedKeys(t *testing.T) {
	km := newKeyedMutex()
	key := types.NewID()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(key)
			unlock()
		}()
	}
	wg.Wait()

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks, "released keys should not accumulate")
}
