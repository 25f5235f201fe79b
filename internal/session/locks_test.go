package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocks(t *testing.T) {
	t.Run("Serializes Same Id", func(t *testing.T) {
		locks := NewLocks()
		var active, maxActive int32
		var wg sync.WaitGroup

		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.Lock("sid")
				defer unlock()

				n := atomic.AddInt32(&active, 1)
				for {
					m := atomic.LoadInt32(&maxActive)
					if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
			}()
		}
		wg.Wait()

		if maxActive != 1 {
			t.Errorf("expected at most one holder, saw %d", maxActive)
		}
		if locks.Len() != 0 {
			t.Errorf("expected lock table to be empty, got %d", locks.Len())
		}
	})

	t.Run("Distinct Ids Do Not Contend", func(t *testing.T) {
		locks := NewLocks()
		unlockA := locks.Lock("a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlock := locks.Lock("b")
			unlock()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock for b blocked on a")
		}
	})
}
