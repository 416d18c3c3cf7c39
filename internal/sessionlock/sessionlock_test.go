package sessionlock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameSession(t *testing.T) {
	locks := New()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("session_1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestLockIndependentSessions(t *testing.T) {
	locks := New()

	unlockA := locks.Lock("session_a")

	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("session_b")
		unlockB()
		close(done)
	}()

	// session_b must not wait on session_a's lock.
	<-done
	unlockA()
}

func TestLockEntryEviction(t *testing.T) {
	locks := New()

	unlock := locks.Lock("session_1")
	unlock()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}
