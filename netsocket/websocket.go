package netsocket

import (
	"context"
	"net"
	"time"

	"github.com/gorilla/websocket"
	kerr "github.com/kotuku-run/parasol/core/errors"
)

// wsConn adapts a gorilla/websocket connection to net.Conn so it can
// drive the same Connection state machine and framed codec as a raw TCP
// socket, grounded on kernel/core/mesh/transport/transport_native.go's
// WebSocketConnection wrapper (same Dialer timeout/buffer-size
// configuration, same "one more transport under the same connection
// abstraction" shape).
type wsConn struct {
	*websocket.Conn
	pending []byte // unread remainder of the last message
}

func (w *wsConn) Read(p []byte) (int, error) {
	if len(w.pending) == 0 {
		_, data, err := w.Conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		w.pending = data
	}
	n := copy(p, w.pending)
	w.pending = w.pending[n:]
	return n, nil
}

func (w wsConn) Write(p []byte) (int, error) {
	if err := w.Conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w wsConn) SetDeadline(t time.Time) error      { return w.Conn.UnderlyingConn().SetDeadline(t) }
func (w wsConn) SetReadDeadline(t time.Time) error   { return w.Conn.UnderlyingConn().SetReadDeadline(t) }
func (w wsConn) SetWriteDeadline(t time.Time) error  { return w.Conn.UnderlyingConn().SetWriteDeadline(t) }

// DialWebSocket connects to a ws(s):// URL and adapts it into a
// Connection, letting the same framed codec and write queue run over a
// WebSocket transport instead of a raw TCP/TLS socket.
func DialWebSocket(ctx context.Context, url string, cfg Config) (*Connection, error) {
	dialer := websocket.Dialer{HandshakeTimeout: cfg.ConnectTimeout}
	if dialer.HandshakeTimeout == 0 {
		dialer.HandshakeTimeout = 30 * time.Second
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, kerr.Wrap(kerr.ConnectionRefused, err)
	}

	c := NewConnection(cfg)
	c.Adopt(net.Conn(&wsConn{Conn: conn}))
	return c, nil
}
