// Package eventloop implements the kernel's central dispatch loop (spec
// §4.7): timers, a process-local message queue, and FD/socket watches.
// Timer and message handlers are all called from the goroutine running
// Run, so they never race each other — the same single-threaded-dispatch
// guarantee the original's ProcessMessages() loop gave callers. FD
// handlers are not covered by that guarantee: NotifyFD calls them
// directly on the goroutine that calls NotifyFD, not through Run.
//
// The message queue (queue.go) is grounded on
// kernel/threads/foundation/message_queue.go's ring buffer: same
// power-of-two capacity requirement, same head/tail indices, same
// magic-tagged header concept reused directly by netsocket's wire
// codec. Where the original ring buffer lived in a shared-array-buffer
// so a second process could dequeue it, this one is an in-process
// mutex-guarded ring, since nothing outside this Go process reads it.
//
// FD/timer multiplexing is grounded on foundation/epoch.go's
// spin-then-channel-wait notification pattern, adapted to a
// container/heap-ordered timer wheel (Go's own net package already
// multiplexes file descriptors, so an FD watch is a handler table that
// the reading code triggers through NotifyFD rather than a raw
// poll/kqueue/epoll loop).
package eventloop

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/kotuku-run/parasol/core/log"
)

// EventKind tags what woke the loop.
type EventKind int

const (
	EventTimer EventKind = iota
	EventMessage
	EventFD
)

// Event is delivered to a single registered Handler.
type Event struct {
	Kind    EventKind
	TimerID uint32
	Message Message
	FD      int
}

type Handler func(Event)

type timerEntry struct {
	id       uint32
	deadline time.Time
	period   time.Duration // 0 = one-shot
	handler  Handler
	index    int
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x any)         { e := x.(*timerEntry); e.index = len(*h); *h = append(*h, e) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Loop is the single dispatch goroutine servicing timers, the message
// queue, and FD watches for one kernel instance.
type Loop struct {
	log *log.Logger

	mu       sync.Mutex
	timers   timerHeap
	nextID   uint32
	wake     chan struct{}

	queue *MessageQueue

	fdMu     sync.Mutex
	fdWatch  map[int]Handler

	msgHandler Handler

	stop chan struct{}
	done chan struct{}
}

func New(logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.Default("eventloop")
	}
	l := &Loop{
		log:     logger,
		wake:    make(chan struct{}, 1),
		queue:   NewMessageQueue(1024),
		fdWatch: make(map[int]Handler),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	heap.Init(&l.timers)
	return l
}

// OnMessage sets the handler invoked for every message dequeued from the
// loop's MessageQueue.
func (l *Loop) OnMessage(h Handler) { l.msgHandler = h }

// AddTimer schedules handler to run after d (and every d thereafter if
// repeat is true), returning a timer ID usable with CancelTimer.
func (l *Loop) AddTimer(d time.Duration, repeat bool, handler Handler) uint32 {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	e := &timerEntry{id: id, deadline: time.Now().Add(d), handler: handler}
	if repeat {
		e.period = d
	}
	heap.Push(&l.timers, e)
	l.mu.Unlock()
	l.nudge()
	return id
}

func (l *Loop) CancelTimer(id uint32) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.timers {
		if e.id == id {
			heap.Remove(&l.timers, i)
			return true
		}
	}
	return false
}

// WatchFD registers handler to be invoked with EventFD whenever NotifyFD
// is called for that fd (the synthetic stand-in for a kernel-level
// readiness notification; the loop does no polling of its own, so the
// code that reads the fd calls NotifyFD once data is available).
func (l *Loop) WatchFD(fd int, handler Handler) {
	l.fdMu.Lock()
	defer l.fdMu.Unlock()
	l.fdWatch[fd] = handler
}

func (l *Loop) UnwatchFD(fd int) {
	l.fdMu.Lock()
	defer l.fdMu.Unlock()
	delete(l.fdWatch, fd)
}

// Stats reports the loop's current load, for Backstage's diagnostics
// route.
type Stats struct {
	TimerCount   int
	FDWatchCount int
	QueueDepth   uint32
	QueueDropped uint64
}

func (l *Loop) Stats() Stats {
	l.mu.Lock()
	timerCount := len(l.timers)
	l.mu.Unlock()

	l.fdMu.Lock()
	fdCount := len(l.fdWatch)
	l.fdMu.Unlock()

	return Stats{
		TimerCount:   timerCount,
		FDWatchCount: fdCount,
		QueueDepth:   l.queue.Depth(),
		QueueDropped: l.queue.Dropped(),
	}
}

// NotifyFD delivers a synthetic readiness event for fd by calling its
// watch handler directly on the caller's goroutine; the event does not
// pass through the message queue or Run.
func (l *Loop) NotifyFD(fd int) {
	l.fdMu.Lock()
	h, ok := l.fdWatch[fd]
	l.fdMu.Unlock()
	if ok {
		h(Event{Kind: EventFD, FD: fd})
	}
}

// Post enqueues a message for delivery to the loop's message handler.
func (l *Loop) Post(msgType uint8, priority uint8, payload []byte) error {
	if err := l.queue.Enqueue(msgType, priority, payload); err != nil {
		return err
	}
	l.nudge()
	return nil
}

func (l *Loop) nudge() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run services timers and the message queue until ctx is cancelled or
// Stop is called. Run is intended to be the only goroutine that calls
// timer/message handlers, giving callers the original's single-threaded
// dispatch guarantee.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		wait := l.nextWait()

		select {
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		case <-l.wake:
		case <-time.After(wait):
		}

		l.fireDueTimers()
		l.drainMessages()
	}
}

func (l *Loop) Stop() {
	close(l.stop)
	<-l.done
}

func (l *Loop) nextWait() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.timers) == 0 {
		return time.Hour
	}
	d := time.Until(l.timers[0].deadline)
	if d < 0 {
		return 0
	}
	return d
}

func (l *Loop) fireDueTimers() {
	now := time.Now()
	for {
		l.mu.Lock()
		if len(l.timers) == 0 || l.timers[0].deadline.After(now) {
			l.mu.Unlock()
			return
		}
		e := heap.Pop(&l.timers).(*timerEntry)
		if e.period > 0 {
			e.deadline = now.Add(e.period)
			heap.Push(&l.timers, e)
		}
		l.mu.Unlock()

		if e.handler != nil {
			e.handler(Event{Kind: EventTimer, TimerID: e.id})
		}
	}
}

func (l *Loop) drainMessages() {
	for {
		msg, ok := l.queue.Dequeue()
		if !ok {
			return
		}
		if l.msgHandler != nil {
			l.msgHandler(Event{Kind: EventMessage, Message: msg})
		}
	}
}
