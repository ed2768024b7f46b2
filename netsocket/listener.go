package netsocket

import (
	"crypto/tls"
	"net"
	"sync"
	"time"

	kerr "github.com/kotuku-run/parasol/core/errors"
	"github.com/kotuku-run/parasol/core/log"
	"github.com/yasserelgammal/rate-limiter/limiter"
	"github.com/yasserelgammal/rate-limiter/store"
)

// ListenerConfig configures server-mode NetSocket (spec §6, FlagServer).
type ListenerConfig struct {
	Address           string
	TLSConfig         *tls.Config
	Logger            *log.Logger
	WriteQueueLimit   int
	OnConnect         func(*Connection)
	OnDisconnect      func(*Connection)
	AcceptRatePerSec  int // 0 disables throttling
	AcceptBurst       int
}

// Listener accepts concurrent client connections, matching the
// original's NSF_SERVER mode; each accepted socket becomes its own
// Connection with its own read/write goroutines. Accept throttling is
// grounded on kernel/core/mesh/routing/gossip.go's use of
// yasserelgammal/rate-limiter for per-peer admission control, applied
// here to the server's global accept rate to blunt connection floods.
type Listener struct {
	cfg ListenerConfig
	log *log.Logger

	ln net.Listener

	limiterStore store.Store
	limiter      *limiter.TokenBucket

	mu      sync.Mutex
	clients map[string]*Connection

	state stateHolder
}

func NewListener(cfg ListenerConfig) *Listener {
	if cfg.Logger == nil {
		cfg.Logger = log.Default("netsocket.listener")
	}
	l := &Listener{cfg: cfg, log: cfg.Logger, clients: make(map[string]*Connection)}
	if cfg.AcceptRatePerSec > 0 {
		l.limiterStore = store.NewMemoryStore(time.Minute)
		l.limiter, _ = limiter.NewTokenBucket(limiter.Config{
			Rate:     int64(cfg.AcceptRatePerSec),
			Duration: time.Second,
			Burst:    int64(cfg.AcceptBurst),
		}, l.limiterStore)
	}
	return l
}

// Listen binds the server socket and transitions to Listening.
func (l *Listener) Listen() error {
	var ln net.Listener
	var err error
	if l.cfg.TLSConfig != nil {
		ln, err = tls.Listen("tcp", l.cfg.Address, l.cfg.TLSConfig)
	} else {
		ln, err = net.Listen("tcp", l.cfg.Address)
	}
	if err != nil {
		return kerr.Wrap(kerr.Failed, err)
	}
	l.ln = ln
	l.state.store(StateListening)
	return nil
}

// Serve accepts connections until the listener is closed. Each accepted
// socket is given its own Connection and handed to cfg.OnConnect.
func (l *Listener) Serve() error {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return kerr.Wrap(kerr.Failed, err)
		}

		// One shared bucket: the limit applies to all accepts together.
		if l.limiter != nil && !l.limiter.Allow("accept") {
			conn.Close()
			continue
		}

		c := NewConnection(Config{
			Address:         conn.RemoteAddr().String(),
			Logger:          l.log,
			WriteQueueLimit: l.cfg.WriteQueueLimit,
		})
		c.Adopt(conn)

		l.mu.Lock()
		l.clients[c.ID.String()] = c
		l.mu.Unlock()

		if l.cfg.OnConnect != nil {
			l.cfg.OnConnect(c)
		}

		go func() {
			<-c.closed
			l.mu.Lock()
			delete(l.clients, c.ID.String())
			l.mu.Unlock()
			if l.cfg.OnDisconnect != nil {
				l.cfg.OnDisconnect(c)
			}
		}()
	}
}

// Clients returns a snapshot of currently connected clients.
func (l *Listener) Clients() []*Connection {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Connection, 0, len(l.clients))
	for _, c := range l.clients {
		out = append(out, c)
	}
	return out
}

func (l *Listener) Close() error {
	l.state.store(StateDisconnected)
	if l.ln == nil {
		return nil
	}
	return l.ln.Close()
}
