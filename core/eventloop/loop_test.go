package eventloop

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	kerr "github.com/kotuku-run/parasol/core/errors"
	"github.com/stretchr/testify/require"
)

func TestMessageQueueRoundTrip(t *testing.T) {
	q := NewMessageQueue(4)
	require.NoError(t, q.Enqueue(1, 0, []byte("a")))
	require.NoError(t, q.Enqueue(2, 0, []byte("b")))
	require.NoError(t, q.Enqueue(3, 0, []byte("c")))
	require.ErrorIs(t, q.Enqueue(4, 0, []byte("d")), kerr.New(kerr.WouldBlock))

	msg, ok := q.Dequeue()
	require.True(t, ok)
	require.Equal(t, uint8(1), msg.MsgType)
	require.Equal(t, MessageMagic, msg.Magic)

	require.NoError(t, q.Enqueue(4, 0, []byte("d")))
}

func TestLoopTimerFires(t *testing.T) {
	l := New(nil)
	var fired atomic.Int32
	var wg sync.WaitGroup
	wg.Add(1)
	l.AddTimer(10*time.Millisecond, false, func(e Event) {
		fired.Add(1)
		wg.Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	defer cancel()

	wg.Wait()
	require.Equal(t, int32(1), fired.Load())
}

func TestLoopDeliversMessage(t *testing.T) {
	l := New(nil)
	received := make(chan Message, 1)
	l.OnMessage(func(e Event) { received <- e.Message })

	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	defer cancel()

	require.NoError(t, l.Post(9, 0, []byte("hi")))

	select {
	case msg := <-received:
		require.Equal(t, uint8(9), msg.MsgType)
	case <-time.After(time.Second):
		t.Fatal("message never delivered")
	}
}

func TestLoopFDWatch(t *testing.T) {
	l := New(nil)
	seen := make(chan int, 1)
	l.WatchFD(5, func(e Event) { seen <- e.FD })
	l.NotifyFD(5)

	select {
	case fd := <-seen:
		require.Equal(t, 5, fd)
	case <-time.After(time.Second):
		t.Fatal("fd event never delivered")
	}

	l.UnwatchFD(5)
	l.NotifyFD(5)
	select {
	case <-seen:
		t.Fatal("unwatched fd still delivered")
	case <-time.After(20 * time.Millisecond):
	}
}
