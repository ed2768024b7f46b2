package syslock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithExclusive(t *testing.T) {
	tbl := NewTable()
	order := []int{}
	require.NoError(t, tbl.With(ClassDB, AccessSingleWriter, func() error {
		order = append(order, 1)
		return nil
	}))
	require.Equal(t, []int{1}, order)
}

func TestReadOnlyConcurrent(t *testing.T) {
	tbl := NewTable()
	u1, err := tbl.Lock(ObjectDB, AccessReadOnly)
	require.NoError(t, err)
	u2, err := tbl.Lock(ObjectDB, AccessReadOnly)
	require.NoError(t, err)
	u1()
	u2()
}

func TestNameString(t *testing.T) {
	require.Equal(t, "ModuleDB", ModuleDB.String())
}
