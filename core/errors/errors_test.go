package errors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeFlags(t *testing.T) {
	c := TimeOut.WithDelay()
	require.True(t, c.HasDelay())
	require.False(t, c.HasNotified())
	require.Equal(t, TimeOut, c.Base())

	c = c.WithNotified()
	require.True(t, c.HasNotified())
	require.Equal(t, TimeOut, c.Base())
}

func TestCodeString(t *testing.T) {
	require.Equal(t, "TimeOut", TimeOut.String())
	require.Equal(t, "TimeOut|Delay", TimeOut.WithDelay().String())
	require.Equal(t, "Okay", Okay.String())
}

func TestStatusIs(t *testing.T) {
	err := New(WouldBlock)
	require.ErrorIs(t, err, New(WouldBlock))
	require.NotErrorIs(t, err, New(TimeOut))
}

func TestFrom(t *testing.T) {
	require.Equal(t, Okay, From(nil))
	require.Equal(t, NullArgs, From(New(NullArgs)))
	require.Equal(t, Failed, From(assertPlainErr()))
}

func assertPlainErr() error {
	return &plainErr{"boom"}
}

type plainErr struct{ msg string }

func (p *plainErr) Error() string { return p.msg }
