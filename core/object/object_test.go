package object

import (
	"sync"
	"testing"
	"time"

	kerr "github.com/kotuku-run/parasol/core/errors"
	"github.com/kotuku-run/parasol/core/memory"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	name    string
	initted bool
	freed   bool
}

func newTestClass() *Class {
	c := NewClass("Example", 1001, func() any { return &testPayload{} })
	c.AddField("Name", FieldReadable|FieldWritable,
		func(obj any) (Variant, error) { return VString(obj.(*testPayload).name), nil },
		func(obj any, v Variant) error { obj.(*testPayload).name = v.Str; return nil },
	)
	c.AddAction(ActInit, "Init", func(obj any, args any) error {
		obj.(*testPayload).initted = true
		return nil
	})
	c.AddAction(ActFree, "Free", func(obj any, args any) error {
		obj.(*testPayload).freed = true
		return nil
	})
	c.AddMethod(-1, "Render", func(obj any, args any) error { return nil })
	return c
}

func TestObjectLifecycle(t *testing.T) {
	reg := NewRegistry(memory.NewLedger())
	reg.RegisterClass(newTestClass())

	inst, err := reg.NewObject("Example", 0)
	require.NoError(t, err)
	require.False(t, inst.Header.Flags&FlagInitialised != 0)

	require.NoError(t, SetField(inst.Payload, inst.Header.ClassRef, "Name", VString("hello")))
	v, err := GetField(inst.Payload, inst.Header.ClassRef, "name")
	require.NoError(t, err)
	require.Equal(t, "hello", v.Str)

	require.NoError(t, reg.Init(inst))
	require.True(t, inst.Payload.(*testPayload).initted)
	require.ErrorIs(t, reg.Init(inst), kerr.New(kerr.DoubleInit))

	require.NoError(t, reg.CallMethod(inst, "render", nil))

	require.NoError(t, reg.FreeResource(inst))
	require.True(t, inst.Payload.(*testPayload).freed)
	require.ErrorIs(t, reg.FreeResource(inst), kerr.New(kerr.DoubleInit))

	_, err = reg.ByID(inst.Header.UniqueID)
	require.ErrorIs(t, err, kerr.New(kerr.NoMatchingObject))
}

func TestFreeWhileLockedFails(t *testing.T) {
	reg := NewRegistry(memory.NewLedger())
	reg.RegisterClass(newTestClass())
	inst, _ := reg.NewObject("Example", 0)
	require.NoError(t, reg.Init(inst))

	tok, err := inst.Header.Lock(0, time.Second)
	require.NoError(t, err)

	require.ErrorIs(t, reg.FreeResource(inst), kerr.New(kerr.LockFailed))

	require.NoError(t, inst.Header.Unlock(tok))
	require.NoError(t, reg.FreeResource(inst))
}

func TestLockReentrant(t *testing.T) {
	h := &Header{}
	tok, err := h.Lock(0, time.Second)
	require.NoError(t, err)
	_, err = h.Lock(tok, time.Second)
	require.NoError(t, err)

	require.NoError(t, h.Unlock(tok))
	require.True(t, h.IsLocked())
	require.NoError(t, h.Unlock(tok))
	require.False(t, h.IsLocked())
}

func TestLockContention(t *testing.T) {
	h := &Header{}
	tok1, err := h.Lock(0, time.Second)
	require.NoError(t, err)

	var wg sync.WaitGroup
	acquired := make(chan uint64, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		tok2, err := h.Lock(0, time.Second)
		if err == nil {
			acquired <- tok2
		}
	}()

	time.Sleep(5 * time.Millisecond)
	require.Equal(t, int32(1), h.SleepQueueDepth())

	require.NoError(t, h.Unlock(tok1))
	wg.Wait()

	select {
	case tok2 := <-acquired:
		require.NotZero(t, tok2)
	default:
		t.Fatal("second lock never acquired")
	}
}

func TestLockTimeout(t *testing.T) {
	h := &Header{}
	_, err := h.Lock(0, time.Second)
	require.NoError(t, err)

	_, err = h.Lock(0, 10*time.Millisecond)
	require.ErrorIs(t, err, kerr.New(kerr.TimeOut))
}

// TestFreeCascadesToOwnedObjects: freeing an owner must free every
// object whose OwnerID points at it, and must release the owner's
// ledger-tracked memory along with it.
func TestFreeCascadesToOwnedObjects(t *testing.T) {
	ledger := memory.NewLedger()
	reg := NewRegistry(ledger)
	reg.RegisterClass(newTestClass())

	a, err := reg.NewObject("Example", 0)
	require.NoError(t, err)
	require.NoError(t, reg.Init(a))

	rec, err := ledger.AllocMemory(64, memory.FlagData, int32(a.Header.UniqueID))
	require.NoError(t, err)

	b, err := reg.NewObject("Example", a.Header.UniqueID)
	require.NoError(t, err)
	require.NoError(t, reg.Init(b))

	require.NoError(t, reg.FreeResource(a))

	require.True(t, a.Payload.(*testPayload).freed)
	require.True(t, b.Payload.(*testPayload).freed)

	_, err = reg.ByID(a.Header.UniqueID)
	require.ErrorIs(t, err, kerr.New(kerr.NoMatchingObject))
	_, err = reg.ByID(b.Header.UniqueID)
	require.ErrorIs(t, err, kerr.New(kerr.NoMatchingObject))

	require.Equal(t, 0, reg.Count())
	require.ErrorIs(t, ledger.FreeResource(rec.ID), kerr.New(kerr.MemoryDoesNotExist))
}

// TestNewObjectInitFreeLeaksNoMemory: every ledger record an object
// allocates for itself must be gone once the object is freed.
func TestNewObjectInitFreeLeaksNoMemory(t *testing.T) {
	ledger := memory.NewLedger()
	reg := NewRegistry(ledger)
	reg.RegisterClass(newTestClass())

	inst, err := reg.NewObject("Example", 0)
	require.NoError(t, err)
	require.NoError(t, reg.Init(inst))

	rec1, err := ledger.AllocMemory(128, memory.FlagData, int32(inst.Header.UniqueID))
	require.NoError(t, err)
	rec2, err := ledger.AllocMemory(32, memory.FlagData, int32(inst.Header.UniqueID))
	require.NoError(t, err)

	require.NoError(t, reg.FreeResource(inst))

	require.ErrorIs(t, ledger.FreeResource(rec1.ID), kerr.New(kerr.MemoryDoesNotExist))
	require.ErrorIs(t, ledger.FreeResource(rec2.ID), kerr.New(kerr.MemoryDoesNotExist))
}

// TestFreeDeferredWhileActionRunning covers the actionDepth > 0 half of
// the ownership/cleanup contract: a Free requested re-entrantly from
// inside another dispatched action must not tear the object down until
// that action unwinds.
func TestFreeDeferredWhileActionRunning(t *testing.T) {
	reg := NewRegistry(memory.NewLedger())
	c := NewClass("Reentrant", 2001, func() any { return &testPayload{} })
	var inst *Instance
	c.AddAction(ActInit, "Init", func(obj any, args any) error {
		// Free dispatched from within Init: actionDepth is 1 here, so
		// the free must be deferred rather than running immediately.
		return reg.FreeResource(inst)
	})
	c.AddAction(ActFree, "Free", func(obj any, args any) error {
		obj.(*testPayload).freed = true
		return nil
	})
	reg.RegisterClass(c)

	var err error
	inst, err = reg.NewObject("Reentrant", 0)
	require.NoError(t, err)

	require.NoError(t, reg.Init(inst))
	require.True(t, inst.Header.Flags&FlagFreePending != 0 || inst.Header.Flags&FlagFree != 0)
	require.True(t, inst.Payload.(*testPayload).freed)
	require.True(t, inst.Header.Flags&FlagFree != 0)

	_, err = reg.ByID(inst.Header.UniqueID)
	require.ErrorIs(t, err, kerr.New(kerr.NoMatchingObject))
}

func TestFieldByNameCaseInsensitive(t *testing.T) {
	c := newTestClass()
	c.Finalize()
	f1, err := c.FieldByName("Name")
	require.NoError(t, err)
	f2, err := c.FieldByName("NAME")
	require.NoError(t, err)
	require.Equal(t, f1.Hash, f2.Hash)
}
