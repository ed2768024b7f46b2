package memory

import (
	"context"
	"testing"

	kerr "github.com/kotuku-run/parasol/core/errors"
	"github.com/stretchr/testify/require"
)

func TestAllocAndFree(t *testing.T) {
	l := NewLedger()
	rec, err := l.AllocMemory(64, FlagData, 1)
	require.NoError(t, err)
	require.Len(t, rec.Data, 64)

	require.NoError(t, l.FreeResource(rec.ID))
	require.ErrorIs(t, l.FreeResource(rec.ID), kerr.New(kerr.MemoryDoesNotExist))
}

func TestAccessMemoryExclusiveBlocks(t *testing.T) {
	l := NewLedger()
	rec, err := l.AllocMemory(8, FlagData, 1)
	require.NoError(t, err)

	b1, err := l.AccessMemory(rec.ID, AccessExclusive)
	require.NoError(t, err)

	_, err = l.AccessMemory(rec.ID, AccessExclusive)
	require.ErrorIs(t, err, kerr.New(kerr.LockFailed))

	b1.Release()
	b2, err := l.AccessMemory(rec.ID, AccessExclusive)
	require.NoError(t, err)
	b2.Release()
}

func TestFreeWhileLockedFails(t *testing.T) {
	l := NewLedger()
	rec, _ := l.AllocMemory(8, FlagData, 1)
	b, _ := l.AccessMemory(rec.ID, AccessExclusive)

	require.ErrorIs(t, l.FreeResource(rec.ID), kerr.New(kerr.LockFailed))
	b.Release()
	require.NoError(t, l.FreeResource(rec.ID))
}

func TestScopedAccess(t *testing.T) {
	l := NewLedger()
	rec, _ := l.AllocMemory(4, FlagData, 1)

	err := l.ScopedAccess(rec.ID, AccessReadWrite, func(data []byte) error {
		data[0] = 0xFF
		return nil
	})
	require.NoError(t, err)

	b, _ := l.AccessMemory(rec.ID, AccessReadOnly)
	require.Equal(t, byte(0xFF), b.Data()[0])
	b.Release()
}

func TestTrackerClosesOutstanding(t *testing.T) {
	l := NewLedger()
	ctx, tr := PushTracker(context.Background(), l, "scope")

	rec, err := l.AllocMemory(16, FlagData, 1)
	require.NoError(t, err)
	tr.Note(rec.ID)

	require.Same(t, tr, TrackerFrom(ctx))

	leaked := tr.Close()
	require.Equal(t, 1, leaked)
	require.ErrorIs(t, l.FreeResource(rec.ID), kerr.New(kerr.MemoryDoesNotExist))
}

func TestNestedTrackers(t *testing.T) {
	l := NewLedger()
	ctx, outer := PushTracker(context.Background(), l, "outer")
	ctx, inner := PushTracker(ctx, l, "inner")

	require.Same(t, outer, inner.parent)
	require.Same(t, inner, TrackerFrom(ctx))
}
