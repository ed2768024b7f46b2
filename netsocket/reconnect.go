package netsocket

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// Reconnector wraps Connection.Dial in a circuit breaker so repeated
// dial failures (a dead peer, a DNS blackhole) stop being retried
// immediately and instead fail fast for a cooldown window. The original
// kernel's NetSocket has no such breaker — this is an enrichment drawn
// from sony/gobreaker, present in the dependency graph but never wired
// to production code; reconnect logic is the natural home for it since
// repeated failed dials are exactly the "don't keep hammering a broken
// dependency" case gobreaker exists for.
type Reconnector struct {
	cb      *gobreaker.CircuitBreaker
	newConn func() *Connection
}

// NewReconnector builds a Reconnector that opens its breaker after
// maxFailures consecutive dial failures and retries (half-open) after
// cooldown.
func NewReconnector(name string, maxFailures uint32, cooldown time.Duration, newConn func() *Connection) *Reconnector {
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	return &Reconnector{cb: gobreaker.NewCircuitBreaker(settings), newConn: newConn}
}

// Dial attempts to connect through the breaker, returning
// gobreaker.ErrOpenState immediately (without dialing) while the breaker
// is open.
func (r *Reconnector) Dial(ctx context.Context) (*Connection, error) {
	conn, err := r.cb.Execute(func() (interface{}, error) {
		c := r.newConn()
		if err := c.Dial(ctx); err != nil {
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return conn.(*Connection), nil
}

func (r *Reconnector) State() gobreaker.State { return r.cb.State() }
