// Package netsocket implements Parasol's NetSocket class: a
// state-machine-driven TCP/TLS connection with an asynchronous write
// queue and a framed wire protocol, plus a server mode that accepts
// concurrent client connections.
//
// Grounded on original_source/core/modules/network/netsocket/
// netsocket_client.cpp for the state transitions and errno→Code mapping,
// and on original_source/core/include/parasol/modules/network.h for the
// exact NTC_*/NSF_*/NETMSG_* constants. The concurrency shape (one
// goroutine per connection driving reads, a buffered write queue drained
// by a second goroutine) is grounded on kernel/core/mesh/transport's
// WebSocketConnection send/receive loop split.
package netsocket

import "sync/atomic"

// State is the NetSocket connection state (spec §6, NTC_* in the
// original).
type State int32

const (
	StateDisconnected State = iota
	StateResolving
	StateConnecting
	StateHandshaking // SSL/TLS handshake in progress (NTC_CONNECTING_SSL)
	StateConnected
	StateListening // server mode, accepting connections
)

var stateNames = map[State]string{
	StateDisconnected: "DISCONNECTED",
	StateResolving:    "RESOLVING",
	StateConnecting:   "CONNECTING",
	StateHandshaking:  "HANDSHAKING",
	StateConnected:    "CONNECTED",
	StateListening:    "LISTENING",
}

func (s State) String() string { return stateNames[s] }

// Flags mirror the original's NSF_* socket flags.
type Flags uint32

const (
	FlagServer       Flags = 0x00000001
	FlagSSL          Flags = 0x00000002
	FlagMultiConnect Flags = 0x00000004
	FlagAsyncResolve Flags = 0x00000008
	FlagDebug        Flags = 0x00000010
)

// stateHolder gives atomic load/store/CAS over a State, used by
// Connection and Listener so State() is safe to read from any goroutine.
type stateHolder struct{ v int32 }

func (h *stateHolder) load() State          { return State(atomic.LoadInt32(&h.v)) }
func (h *stateHolder) store(s State)        { atomic.StoreInt32(&h.v, int32(s)) }
func (h *stateHolder) cas(old, new State) bool {
	return atomic.CompareAndSwapInt32(&h.v, int32(old), int32(new))
}
