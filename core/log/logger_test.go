package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: Warn, Output: &buf, Component: "test"})
	l.Info("should be filtered")
	require.Empty(t, buf.String())

	l.Warn("should appear", String("k", "v"))
	require.Contains(t, buf.String(), "should appear")
	require.Contains(t, buf.String(), `k="v"`)
}

func TestBranchIndentsAndReturns(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: Trace, Output: &buf})

	ctx, done := Branch(context.Background(), l, "Outer")
	_, inner := Branch(ctx, l, "Inner")
	inner(nil)
	done(nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], "Outer()")
	require.Contains(t, lines[1], "  Inner()")
	require.Contains(t, lines[2], "  Inner() <-")
	require.Contains(t, lines[3], "Outer() <-")
}
