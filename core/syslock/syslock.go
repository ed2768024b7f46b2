// Package syslock implements the kernel's small set of named system
// locks — process-wide mutexes guarding global tables (the class
// registry, the module registry, the object ID allocator) distinct from
// per-object locks in core/object.
//
// Grounded on kernel/threads/sab/guard.go's RegionPolicy/AccessMode
// (read-only vs single-writer vs multi-writer regions): syslock keeps
// the same three access modes but arbitrates goroutines within one
// process rather than processes sharing a memory region, so a
// sync.RWMutex per named lock replaces the original's owner-mask
// bookkeeping.
package syslock

import (
	"sync"

	kerr "github.com/kotuku-run/parasol/core/errors"
)

// Name identifies one of the kernel's fixed set of system locks.
type Name int

const (
	ClassDB Name = iota
	ObjectDB
	ModuleDB
	MemoryDB
	count
)

var names = map[Name]string{
	ClassDB:  "ClassDB",
	ObjectDB: "ObjectDB",
	ModuleDB: "ModuleDB",
	MemoryDB: "MemoryDB",
}

func (n Name) String() string { return names[n] }

// AccessMode selects how a region is to be locked.
type AccessMode int

const (
	AccessReadOnly AccessMode = iota
	AccessSingleWriter
	AccessMultiWriter
)

// Table is the fixed array of named system locks for one kernel
// instance, analogous to the original's small set of global SAB region
// locks (CLASSDB, OBJECTDB, etc).
type Table struct {
	locks [int(count)]sync.RWMutex
}

func NewTable() *Table { return &Table{} }

func (t *Table) lockFor(n Name) (*sync.RWMutex, error) {
	if n < 0 || n >= count {
		return nil, kerr.New(kerr.Args)
	}
	return &t.locks[n], nil
}

// Lock acquires the named lock for the given mode, returning an Unlock
// function that must be called exactly once.
func (t *Table) Lock(n Name, mode AccessMode) (func(), error) {
	l, err := t.lockFor(n)
	if err != nil {
		return nil, err
	}
	switch mode {
	case AccessReadOnly, AccessMultiWriter:
		l.RLock()
		return l.RUnlock, nil
	default:
		l.Lock()
		return l.Unlock, nil
	}
}

// With runs fn while holding the named lock in the given mode.
func (t *Table) With(n Name, mode AccessMode, fn func() error) error {
	unlock, err := t.Lock(n, mode)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}
