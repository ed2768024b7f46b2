package memory

import "context"

// Tracker mirrors include/parasol/memtracker.h's MemTracker: a
// scope-nested record of outstanding allocations, pushed onto a
// thread-local chain (glActiveTracker) for leak reporting on scope exit.
// Go has no raw TLS, so the chain is carried through a context.Context
// instead, the same substitution core/log/branch.go uses for call depth.
type Tracker struct {
	ledger   *Ledger
	parent   *Tracker
	name     string
	allocIDs []uint32
}

type trackerKey struct{}

// PushTracker returns a context carrying a new Tracker nested under
// whatever Tracker ctx already holds (or the root, if none).
func PushTracker(ctx context.Context, ledger *Ledger, name string) (context.Context, *Tracker) {
	parent, _ := ctx.Value(trackerKey{}).(*Tracker)
	t := &Tracker{ledger: ledger, parent: parent, name: name}
	return context.WithValue(ctx, trackerKey{}, t), t
}

// TrackerFrom returns the current scope's Tracker, or nil if none is active.
func TrackerFrom(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}

// Note records an allocation made within this Tracker's scope so Close
// can free anything the caller forgot to release explicitly.
func (t *Tracker) Note(id uint32) {
	t.allocIDs = append(t.allocIDs, id)
}

// Close frees every allocation this Tracker noted that is still live,
// returning the count it had to clean up (a leak indicator, matching the
// original's end-of-scope diagnostic).
func (t *Tracker) Close() int {
	leaked := 0
	for _, id := range t.allocIDs {
		if err := t.ledger.FreeResource(id); err == nil {
			leaked++
		}
	}
	return leaked
}
