package eventloop

import (
	"sync"
	"sync/atomic"

	kerr "github.com/kotuku-run/parasol/core/errors"
)

// MessageMagic tags every queued message, mirroring
// foundation/message_queue.go's MESSAGE_MAGIC corruption check.
const MessageMagic uint64 = 0x4D53475F45504F43

// Message is one entry dequeued from a MessageQueue.
type Message struct {
	Magic    uint64
	Sequence uint64
	MsgType  uint8
	Priority uint8
	Payload  []byte
}

// MessageQueue is a fixed-capacity ring buffer of Messages. Capacity
// must be a power of two, matching the original's masked index
// arithmetic (head/tail wrap via `& (capacity-1)` instead of modulo).
type MessageQueue struct {
	mu       sync.Mutex
	slots    []Message
	capacity uint32
	head     uint32
	tail     uint32
	sequence uint64

	dropped atomic.Uint64
}

func NewMessageQueue(capacity uint32) *MessageQueue {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("eventloop: capacity must be a power of 2")
	}
	return &MessageQueue{slots: make([]Message, capacity), capacity: capacity}
}

// Enqueue adds a message to the tail. Returns WouldBlock if the ring is
// full, matching the original's "queue full" drop-and-count behaviour.
func (q *MessageQueue) Enqueue(msgType, priority uint8, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	nextTail := (q.tail + 1) & (q.capacity - 1)
	if nextTail == q.head {
		q.dropped.Add(1)
		return kerr.New(kerr.WouldBlock)
	}

	q.sequence++
	q.slots[q.tail] = Message{
		Magic:    MessageMagic,
		Sequence: q.sequence,
		MsgType:  msgType,
		Priority: priority,
		Payload:  payload,
	}
	q.tail = nextTail
	return nil
}

// Dequeue removes and returns the head message, if any.
func (q *MessageQueue) Dequeue() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == q.tail {
		return Message{}, false
	}
	msg := q.slots[q.head]
	q.head = (q.head + 1) & (q.capacity - 1)
	return msg, true
}

// Depth reports the number of queued-but-undelivered messages.
func (q *MessageQueue) Depth() uint32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return (q.tail - q.head) & (q.capacity - 1)
}

func (q *MessageQueue) Dropped() uint64 { return q.dropped.Load() }
