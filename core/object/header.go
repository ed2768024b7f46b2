// Package object implements the kernel's uniform object runtime: every
// class-managed instance shares the Header layout, dispatches through a
// Class's field/action/method dictionaries, and is reachable by ID from
// a process-wide Registry.
//
// The lock/queue protocol (lock.go) is grounded on
// kernel/threads/foundation/epoch.go's EnhancedEpoch: a fast atomic path,
// a short spin, then a channel-based waiter list for the slow path. Where
// the original keeps a raw epoch counter in a shared-array-buffer slot,
// Header keeps it in an in-process atomic field, since nothing here
// crosses a process boundary.
package object

import (
	"sync"
	"sync/atomic"
)

// Flags mirror the original header's bit flags (spec §3 object header).
type Flags uint32

const (
	FlagInitialised Flags = 1 << iota
	FlagUnlocked
	FlagFree
	FlagNewObject
	FlagNewOwner
	FlagStatic
	FlagFreePending
)

// MemFlags select how the object's own backing memory was allocated.
type MemFlags uint32

const (
	MemData MemFlags = 1 << iota
	MemManaged
	MemNoLock
)

// Header is embedded at the front of every managed object, matching the
// spec's uniform object header: identity, class linkage, ownership, and
// the atomic fields the lock/queue protocol operates on.
type Header struct {
	ClassRef   *Class
	UniqueID   uint32
	OwnerID    uint32
	ClassID    uint32
	SubClassID uint32
	Flags      Flags
	MemFlags   MemFlags
	TaskID     uint32

	threadID    uint64 // atomic: id of the thread currently holding the lock, 0 if unlocked
	queue       int32  // atomic: reentrant lock depth / fast-path counter
	sleepQueue  int32  // atomic: count of goroutines blocked in the slow path
	actionDepth int32  // atomic: reentrancy guard for nested Init/Action/CallMethod dispatch

	waitersMu sync.Mutex
	waiters   []chan struct{}

	// freeReady, set by Registry.FreeResource when a free was deferred
	// because actionDepth was nonzero, runs once actionDepth returns to
	// zero and actually tears the object down.
	freeReady func()

	childPrivate any
}

func (h *Header) Class() *Class { return h.ClassRef }

func (h *Header) isFlagSet(f Flags) bool { return Flags(atomicLoadFlags(h)) & f != 0 }

func atomicLoadFlags(h *Header) uint32 { return uint32(h.Flags) }

// actionDepthGuard increments the reentrancy counter for the duration of
// fn, restoring it afterward; used by Init, Action and CallMethod to
// detect runaway recursion (more than maxActionDepth nested calls). When the
// depth falls back to zero it also runs any free deferred by
// Registry.FreeResource while an action was still on the stack.
func (h *Header) actionDepthGuard(fn func() error) error {
	d := atomic.AddInt32(&h.actionDepth, 1)
	if d > maxActionDepth {
		atomic.AddInt32(&h.actionDepth, -1)
		return errRecursion
	}
	err := fn()
	if atomic.AddInt32(&h.actionDepth, -1) == 0 {
		h.runFreeReady()
	}
	return err
}

func (h *Header) runFreeReady() {
	h.waitersMu.Lock()
	ready := h.freeReady
	h.freeReady = nil
	h.waitersMu.Unlock()
	if ready != nil {
		ready()
	}
}

const maxActionDepth = 64
