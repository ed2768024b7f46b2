package netsocket

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	kerr "github.com/kotuku-run/parasol/core/errors"
	"github.com/kotuku-run/parasol/core/log"
)

// Config configures a Connection before Dial.
type Config struct {
	Address          string
	Flags            Flags
	TLSConfig        *tls.Config // non-nil enables the handshake state (FlagSSL)
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	WriteQueueLimit  int
	Logger           *log.Logger

	// OnStateChange is invoked (off the connection's own goroutine is
	// not guaranteed) whenever State() transitions, mirroring the
	// original's FID_State field notification.
	OnStateChange func(old, new State)
	OnIncoming    func(frame []byte)
}

// Connection is a single NetSocket instance: the state machine, the
// underlying net.Conn once established, and the write queue draining
// into it. ID is a process-unique identifier suitable for correlating
// log lines and Backstage lookups (grounded on the pack's direct use of
// google/uuid for connection/session identity).
type Connection struct {
	ID uuid.UUID

	cfg   Config
	state stateHolder
	log   *log.Logger

	mu       sync.Mutex
	conn     net.Conn
	incoming chan []byte

	writeQueue *WriteQueue
	writeWake  chan struct{}

	errMu    sync.Mutex
	lastErr  error

	closeOnce sync.Once
	closed    chan struct{}
}

// NewConnection prepares a Connection in the Disconnected state. Dial
// drives it through Resolving/Connecting/Handshaking to Connected;
// Adopt (server-side, for an accepted socket) moves it straight to
// Connected.
func NewConnection(cfg Config) *Connection {
	if cfg.Logger == nil {
		cfg.Logger = log.Default("netsocket")
	}
	if cfg.WriteQueueLimit <= 0 {
		cfg.WriteQueueLimit = 1 << 20
	}
	c := &Connection{
		ID:         uuid.New(),
		cfg:        cfg,
		log:        cfg.Logger,
		writeQueue: NewWriteQueue(cfg.WriteQueueLimit),
		writeWake:  make(chan struct{}, 1),
		closed:     make(chan struct{}),
	}
	return c
}

func (c *Connection) State() State { return c.state.load() }

func (c *Connection) setState(s State) {
	old := c.state.load()
	c.state.store(s)
	if c.cfg.OnStateChange != nil && old != s {
		c.cfg.OnStateChange(old, s)
	}
}

func (c *Connection) LastError() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.lastErr
}

func (c *Connection) fail(err error) error {
	c.errMu.Lock()
	c.lastErr = err
	c.errMu.Unlock()
	c.setState(StateDisconnected)
	return err
}

// Dial resolves and connects to cfg.Address, performing a TLS handshake
// first if cfg.TLSConfig is set. Mirrors the original's
// DISCONNECTED -> RESOLVING -> CONNECTING -> [HANDSHAKING] -> CONNECTED
// progression; net.DialTimeout folds resolution and connection into one
// step the way the original's async resolver eventually also collapsed
// into a single connect() call once an address was in hand.
func (c *Connection) Dial(ctx context.Context) error {
	if !c.state.cas(StateDisconnected, StateResolving) {
		return kerr.New(kerr.AlreadyDefined)
	}
	ctx, branchDone := log.Branch(ctx, c.log, "Dial", log.String("address", c.cfg.Address))
	defer func() { branchDone(c.LastError()) }()

	c.setState(StateConnecting)

	dialer := net.Dialer{Timeout: c.cfg.ConnectTimeout}
	raw, err := dialer.DialContext(ctx, "tcp", c.cfg.Address)
	if err != nil {
		return c.fail(mapDialError(err))
	}

	conn := net.Conn(raw)
	if c.cfg.TLSConfig != nil {
		c.setState(StateHandshaking)
		tlsConn := tls.Client(raw, c.cfg.TLSConfig)
		hctx := ctx
		if c.cfg.HandshakeTimeout > 0 {
			var cancel context.CancelFunc
			hctx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
			defer cancel()
		}
		if err := tlsConn.HandshakeContext(hctx); err != nil {
			raw.Close()
			return c.fail(mapDialError(err))
		}
		conn = tlsConn
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected)
	go c.readLoop()
	go c.writeLoop()
	return nil
}

// Adopt wires an already-accepted net.Conn (server-side) into Connected
// state, skipping Dial's resolve/connect steps.
func (c *Connection) Adopt(conn net.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.setState(StateConnected)
	go c.readLoop()
	go c.writeLoop()
}

// Write frames payload and enqueues it for asynchronous delivery,
// returning WouldBlock if the write queue is full rather than blocking
// the caller.
func (c *Connection) Write(payload []byte) error {
	if c.State() != StateConnected {
		return kerr.New(kerr.Disconnected)
	}
	frame, err := EncodeFrame(payload)
	if err != nil {
		return err
	}
	if err := c.writeQueue.Push(frame); err != nil {
		return err
	}
	select {
	case c.writeWake <- struct{}{}:
	default:
	}
	return nil
}

func (c *Connection) writeLoop() {
	for {
		select {
		case <-c.closed:
			return
		case <-c.writeWake:
		}
		for {
			frame, ok := c.writeQueue.Pop()
			if !ok {
				break
			}
			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()
			if conn == nil {
				return
			}
			if _, err := conn.Write(frame); err != nil {
				c.fail(kerr.Wrap(kerr.Write, err))
				c.Close()
				return
			}
		}
	}
}

func (c *Connection) readLoop() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	for {
		payload, err := DecodeFrame(conn)
		if err != nil {
			if c.State() != StateDisconnected {
				c.fail(kerr.Wrap(kerr.Read, err))
			}
			c.Close()
			return
		}
		if c.cfg.OnIncoming != nil {
			c.cfg.OnIncoming(payload)
		}
		if c.incoming != nil {
			select {
			case c.incoming <- payload:
			default:
			}
		}
	}
}

// Close tears down the connection exactly once, transitioning to
// Disconnected.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn != nil {
			err = conn.Close()
		}
		c.setState(StateDisconnected)
	})
	return err
}
