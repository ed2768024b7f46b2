package netsocket

import (
	"sync"

	kerr "github.com/kotuku-run/parasol/core/errors"
)

// WriteQueue buffers outbound frames until the connection's write
// goroutine sends them. It takes the place of the original's Buffer/
// Index/Length fields but holds a FIFO of whole frames rather than one
// buffer with byte offsets into a partially-written message. Writes beyond
// Limit fail with WouldBlock rather than growing unbounded, giving
// callers explicit backpressure.
type WriteQueue struct {
	mu    sync.Mutex
	bufs  [][]byte
	bytes int
	Limit int
}

func NewWriteQueue(limit int) *WriteQueue {
	return &WriteQueue{Limit: limit}
}

// Push appends a frame to the queue, failing with WouldBlock if Limit
// (in bytes) would be exceeded.
func (q *WriteQueue) Push(frame []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Limit > 0 && q.bytes+len(frame) > q.Limit {
		return kerr.New(kerr.WouldBlock)
	}
	q.bufs = append(q.bufs, frame)
	q.bytes += len(frame)
	return nil
}

// Pop removes and returns the oldest queued frame, if any.
func (q *WriteQueue) Pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.bufs) == 0 {
		return nil, false
	}
	f := q.bufs[0]
	q.bufs = q.bufs[1:]
	q.bytes -= len(f)
	return f, true
}

func (q *WriteQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.bufs)
}

func (q *WriteQueue) PendingBytes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.bytes
}
