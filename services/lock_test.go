package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTxLocksSerializeSameKey(t *testing.T) {
	locks := newTxLocks()
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock("TXN1")
			counter++
			locks.Unlock("TXN1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestTxLocksReleaseEntries(t *testing.T) {
	locks := newTxLocks()

	locks.Lock("TXN1")
	locks.Lock("TXN2")
	locks.Unlock("TXN1")
	locks.Unlock("TXN2")

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}

func TestTxLocksIndependentKeys(t *testing.T) {
	locks := newTxLocks()

	locks.Lock("TXN1")
	done := make(chan struct{})
	go func() {
		locks.Lock("TXN2")
		locks.Unlock("TXN2")
		close(done)
	}()
	<-done // a different key must not block
	locks.Unlock("TXN1")
}
