package netsocket

import (
	"context"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

func TestListenerAcceptsClient(t *testing.T) {
	connected := make(chan *Connection, 1)
	l := NewListener(ListenerConfig{
		Address:   "127.0.0.1:0",
		OnConnect: func(c *Connection) { connected <- c },
	})
	require.NoError(t, l.Listen())
	defer l.Close()
	go l.Serve()

	client := NewConnection(Config{Address: l.ln.Addr().String(), ConnectTimeout: time.Second})
	require.NoError(t, client.Dial(context.Background()))
	defer client.Close()

	select {
	case c := <-connected:
		require.Equal(t, StateConnected, c.State())
		require.Len(t, l.Clients(), 1)
	case <-time.After(time.Second):
		t.Fatal("listener never accepted connection")
	}
}

func TestReconnectorOpensAfterFailures(t *testing.T) {
	r := NewReconnector("test", 2, time.Minute, func() *Connection {
		return NewConnection(Config{Address: "127.0.0.1:1", ConnectTimeout: 50 * time.Millisecond})
	})

	for i := 0; i < 2; i++ {
		_, err := r.Dial(context.Background())
		require.Error(t, err)
	}

	_, err := r.Dial(context.Background())
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, gobreaker.StateOpen, r.State())
}
