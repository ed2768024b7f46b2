package object

import (
	"runtime"
	"sync/atomic"
	"time"

	kerr "github.com/kotuku-run/parasol/core/errors"
)

// currentThreadID stands in for the OS thread ID the original lock
// protocol compares against; goroutines have no stable thread identity,
// so each lock-holding goroutine is given a private token for the
// duration of its critical section instead.
type lockToken struct{ n uint64 }

var tokenCounter uint64

func newToken() uint64 {
	return atomic.AddUint64(&tokenCounter, 1)
}

// Lock acquires the object's reentrant lock, blocking up to timeout. A
// zero timeout blocks indefinitely. Reentrant: a goroutine already
// holding the lock (identified by the token it was given on first
// acquisition) may lock again without counting against itself, mirroring
// the original's same-thread-ID fast path.
//
// Fast path: a CAS of threadID from 0 to the caller's token succeeds
// immediately when the lock is free, and queue is then incremented.
// Slow path: after a brief spin, increment sleepQueue and block on a per-header waiter
// channel until Unlock wakes one sleeper or the timeout elapses.
func (h *Header) Lock(token uint64, timeout time.Duration) (acquired uint64, err error) {
	if token != 0 && atomic.LoadUint64(&h.threadID) == token {
		atomic.AddInt32(&h.queue, 1)
		return token, nil
	}

	if token == 0 {
		token = newToken()
	}

	// Fast path.
	if atomic.CompareAndSwapUint64(&h.threadID, 0, token) {
		atomic.AddInt32(&h.queue, 1)
		return token, nil
	}

	// Brief spin, matching epoch.go's sub-microsecond spin window before
	// falling back to a blocking wait.
	spinDeadline := time.Now().Add(time.Microsecond)
	for time.Now().Before(spinDeadline) {
		runtime.Gosched()
		if atomic.CompareAndSwapUint64(&h.threadID, 0, token) {
			atomic.AddInt32(&h.queue, 1)
			return token, nil
		}
	}

	// Slow path: register as a sleeper and block until woken or the
	// deadline passes. A wake is only a signal to retry the fast path,
	// not a guarantee of acquisition — if the CAS loses the race to a
	// fresh fast-path acquirer, re-register and wait out the remaining
	// deadline rather than failing outright.
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		if atomic.CompareAndSwapUint64(&h.threadID, 0, token) {
			atomic.AddInt32(&h.queue, 1)
			return token, nil
		}

		ch := make(chan struct{}, 1)
		atomic.AddInt32(&h.sleepQueue, 1)
		h.waitersMu.Lock()
		h.waiters = append(h.waiters, ch)
		h.waitersMu.Unlock()

		// Re-check after registering: an Unlock that ran between the CAS
		// above and the append found no waiter to wake.
		if atomic.CompareAndSwapUint64(&h.threadID, 0, token) {
			atomic.AddInt32(&h.sleepQueue, -1)
			h.removeWaiter(ch)
			atomic.AddInt32(&h.queue, 1)
			return token, nil
		}

		wait := 365 * 24 * time.Hour
		if !deadline.IsZero() {
			wait = time.Until(deadline)
			if wait <= 0 {
				atomic.AddInt32(&h.sleepQueue, -1)
				h.removeWaiter(ch)
				return 0, kerr.New(kerr.TimeOut)
			}
		}

		select {
		case <-ch:
			atomic.AddInt32(&h.sleepQueue, -1)
			if atomic.CompareAndSwapUint64(&h.threadID, 0, token) {
				atomic.AddInt32(&h.queue, 1)
				return token, nil
			}
			// Lost the race to another acquirer; loop back and retry
			// the fast path against the remaining deadline.
			continue
		case <-time.After(wait):
			atomic.AddInt32(&h.sleepQueue, -1)
			h.removeWaiter(ch)
			return 0, kerr.New(kerr.TimeOut)
		}
	}
}

// Unlock releases one level of the reentrant lock. When the queue
// depth reaches zero the lock is fully released: threadID is cleared
// and, if any goroutines are sleeping in the slow path, exactly one is
// woken.
func (h *Header) Unlock(token uint64) error {
	if atomic.LoadUint64(&h.threadID) != token {
		return kerr.New(kerr.LockFailed)
	}
	if atomic.AddInt32(&h.queue, -1) > 0 {
		return nil
	}

	atomic.StoreUint64(&h.threadID, 0)

	h.waitersMu.Lock()
	var next chan struct{}
	if len(h.waiters) > 0 {
		next = h.waiters[0]
		h.waiters = h.waiters[1:]
	}
	h.waitersMu.Unlock()

	if next != nil {
		select {
		case next <- struct{}{}:
		default:
		}
	}
	return nil
}

func (h *Header) removeWaiter(ch chan struct{}) {
	h.waitersMu.Lock()
	defer h.waitersMu.Unlock()
	for i, w := range h.waiters {
		if w == ch {
			h.waiters = append(h.waiters[:i], h.waiters[i+1:]...)
			break
		}
	}
}

// IsLocked reports whether any goroutine currently holds the lock.
func (h *Header) IsLocked() bool {
	return atomic.LoadUint64(&h.threadID) != 0
}

// SleepQueueDepth reports how many goroutines are blocked waiting for
// the lock, exposed for Backstage diagnostics.
func (h *Header) SleepQueueDepth() int32 {
	return atomic.LoadInt32(&h.sleepQueue)
}
