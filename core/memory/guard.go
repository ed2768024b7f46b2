package memory

import kerr "github.com/kotuku-run/parasol/core/errors"

// GuardedAlloc allocates a block and returns a release function bound to
// it, so callers can `defer release()` instead of remembering an ID. This
// is the common case of AllocMemory immediately followed by a matching
// FreeResource once the block falls out of scope.
func (l *Ledger) GuardedAlloc(size int, flags Flags, ownerID int32) (*Record, func(), error) {
	rec, err := l.AllocMemory(size, flags, ownerID)
	if err != nil {
		return nil, nil, err
	}
	return rec, func() { l.FreeResource(rec.ID) }, nil
}

// ScopedAccess borrows a block for the duration of fn and releases it
// before returning, regardless of whether fn panics.
func (l *Ledger) ScopedAccess(id uint32, mode AccessMode, fn func(data []byte) error) error {
	b, err := l.AccessMemory(id, mode)
	if err != nil {
		return err
	}
	defer b.Release()
	return fn(b.Data())
}

// SwitchContext re-borrows a block under a different access mode without
// a window where the block is fully unlocked to other goroutines racing
// for exclusive access: it holds the ledger mutex across the downgrade/
// upgrade instead of calling Release then AccessMemory separately.
func (l *Ledger) SwitchContext(b *Borrow, newMode AccessMode) (*Borrow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if newMode == AccessExclusive && b.mode != AccessExclusive && b.rec.locked {
		return nil, kerr.New(kerr.LockFailed)
	}

	if b.mode == AccessExclusive && newMode != AccessExclusive {
		b.rec.locked = false
	}
	if newMode == AccessExclusive {
		b.rec.locked = true
	}
	b.mode = newMode
	return b, nil
}
