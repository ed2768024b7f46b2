// Package memory implements the kernel's memory ledger: tagged,
// explicitly-released allocations with a lookup-by-ID indirection layer,
// scoped guards, and a nesting allocation tracker.
//
// Grounded on kernel/threads/arena/allocator.go's HybridAllocator (size
// routing, flags, statistics) and include/parasol/memtracker.h (the
// scoped, thread-local-stacked tracker). Because the host here is a Go
// runtime rather than a raw address space, a Record wraps a []byte
// instead of a pointer; the ledger's job is bookkeeping discipline
// (matching alloc/free pairs, rejecting double frees, honoring lock
// state) layered over Go's GC, exactly as the Design Notes recommend
// replacing raw memory IDs with typed handles.
package memory

import (
	"sync"
	"sync/atomic"

	kerr "github.com/kotuku-run/parasol/core/errors"
)

// Flags select allocation policy, mirroring the spec's memory record flags.
type Flags uint32

const (
	FlagData Flags = 1 << iota
	FlagManaged
	FlagNoClear
	FlagPublic
	FlagLongLived
)

// Record is the ledger's bookkeeping entry for one allocation.
type Record struct {
	ID       uint32
	Data     []byte
	OwnerID  int32
	Flags    Flags
	refs     int32
	locked   bool
}

// Ledger is the process-wide registry of outstanding allocations (spec
// §4.2). A Ledger is safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	records map[uint32]*Record
	nextID  uint32
}

func NewLedger() *Ledger {
	return &Ledger{records: make(map[uint32]*Record)}
}

// AllocMemory allocates a tagged block. Unless FlagNoClear is set, the
// block is zero-initialised (Go's make already zeroes, kept explicit to
// document the contract).
func (l *Ledger) AllocMemory(size int, flags Flags, ownerID int32) (*Record, error) {
	if size < 0 {
		return nil, kerr.New(kerr.Args)
	}
	data := make([]byte, size)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	rec := &Record{ID: l.nextID, Data: data, OwnerID: ownerID, Flags: flags}
	l.records[rec.ID] = rec
	return rec, nil
}

// FreeResource releases a block exactly once. Releasing a still-locked
// block fails with LockFailed; releasing an unknown/already-freed ID
// fails with MemoryDoesNotExist.
func (l *Ledger) FreeResource(id uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[id]
	if !ok {
		return kerr.New(kerr.MemoryDoesNotExist)
	}
	if rec.locked || atomic.LoadInt32(&rec.refs) > 0 {
		return kerr.New(kerr.LockFailed)
	}
	delete(l.records, id)
	return nil
}

// FreeOwned releases every record tagged with ownerID — the bulk
// counterpart of FreeResource used by the object registry's owner-
// cascade free. Records still locked or referenced are left in place;
// freed reports how many were actually released, and err (LockFailed)
// is set if any owned record could not be.
func (l *Ledger) FreeOwned(ownerID int32) (freed int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, rec := range l.records {
		if rec.OwnerID != ownerID {
			continue
		}
		if rec.locked || atomic.LoadInt32(&rec.refs) > 0 {
			err = kerr.New(kerr.LockFailed)
			continue
		}
		delete(l.records, id)
		freed++
	}
	return freed, err
}

// AccessMode selects the access an AccessMemory caller requests.
type AccessMode int

const (
	AccessReadOnly AccessMode = iota
	AccessReadWrite
	AccessExclusive
)

// Borrow is the obligation returned by AccessMemory: the caller must call
// Release exactly once. This is the typed-handle replacement for a raw
// pointer + ReleaseMemory(id) pair the Design Notes call for.
type Borrow struct {
	rec    *Record
	ledger *Ledger
	mode   AccessMode
}

// Data exposes the borrowed bytes. Holding a Borrow past Release is a
// programmer error, mirroring the original's AccessMemory contract.
func (b *Borrow) Data() []byte { return b.rec.Data }

func (b *Borrow) Release() {
	atomic.AddInt32(&b.rec.refs, -1)
	if b.mode == AccessExclusive {
		b.ledger.mu.Lock()
		b.rec.locked = false
		b.ledger.mu.Unlock()
	}
}

// AccessMemory resolves a memory ID to a Borrow without requiring the
// caller to hold a raw pointer. Exclusive access fails with LockFailed if
// already locked by another accessor.
func (l *Ledger) AccessMemory(id uint32, mode AccessMode) (*Borrow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[id]
	if !ok {
		return nil, kerr.New(kerr.AccessMemory)
	}
	if mode == AccessExclusive {
		if rec.locked {
			return nil, kerr.New(kerr.LockFailed)
		}
		rec.locked = true
	}
	atomic.AddInt32(&rec.refs, 1)
	return &Borrow{rec: rec, ledger: l, mode: mode}, nil
}

// Stats summarises outstanding allocations, for the scoped Tracker.
type Stats struct {
	AllocCount     uint64
	FreeCount      uint64
	OutstandingBytes uint64
}

func (l *Ledger) snapshot() (count int, bytes uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		count++
		bytes += uint64(len(r.Data))
	}
	return
}
