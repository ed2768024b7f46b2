package netsocket

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDialAndExchangeFrame(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverReceived := make(chan []byte, 1)
	go func() {
		raw, err := ln.Accept()
		if err != nil {
			return
		}
		server := NewConnection(Config{})
		server.cfg.OnIncoming = func(frame []byte) { serverReceived <- frame }
		server.Adopt(raw)
	}()

	client := NewConnection(Config{Address: ln.Addr().String(), ConnectTimeout: time.Second})
	require.NoError(t, client.Dial(context.Background()))
	require.Equal(t, StateConnected, client.State())

	require.NoError(t, client.Write([]byte("ping")))

	select {
	case got := <-serverReceived:
		require.Equal(t, "ping", string(got))
	case <-time.After(time.Second):
		t.Fatal("server never received frame")
	}

	require.NoError(t, client.Close())
	require.Equal(t, StateDisconnected, client.State())
}

func TestDialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close() // nothing listening now

	client := NewConnection(Config{Address: addr, ConnectTimeout: time.Second})
	err = client.Dial(context.Background())
	require.Error(t, err)
	require.Equal(t, StateDisconnected, client.State())
}

func TestWriteQueueBackpressure(t *testing.T) {
	q := NewWriteQueue(10)
	require.NoError(t, q.Push(make([]byte, 5)))
	require.Error(t, q.Push(make([]byte, 10)))

	f, ok := q.Pop()
	require.True(t, ok)
	require.Len(t, f, 5)

	_, ok = q.Pop()
	require.False(t, ok)
}
