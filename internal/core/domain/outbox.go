package domain

import (
	"sync"

	"github.com/eapache/queue"
)

// Outbox is the outbound frame queue of one connection.
//
// Push never blocks and the queue is unbounded; frames are drained in the
// order they were pushed. After Close every Push fails with
// ErrDeliveryFailed and pending frames are dropped.
type Outbox struct {
	mu     sync.Mutex
	items  *queue.Queue
	closed bool

	ready chan struct{}
	done  chan struct{}
}

// NewOutbox creates an empty, open outbox.
func NewOutbox() *Outbox {
	return &Outbox{
		items: queue.New(),
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Push appends a frame.
func (o *Outbox) Push(f Frame) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrDeliveryFailed.WithDetails("connection closing")
	}
	o.items.Add(f)
	o.mu.Unlock()

	select {
	case o.ready <- struct{}{}:
	default:
	}
	return nil
}

// Drain removes every pending frame and appends them to buf in order.
func (o *Outbox) Drain(buf []Frame) []Frame {
	o.mu.Lock()
	defer o.mu.Unlock()
	for o.items.Length() > 0 {
		buf = append(buf, o.items.Remove().(Frame))
	}
	return buf
}

// Ready is signalled after a Push; one signal may cover several frames.
func (o *Outbox) Ready() <-chan struct{} {
	return o.ready
}

// Done is closed by Close.
func (o *Outbox) Done() <-chan struct{} {
	return o.done
}

// Len returns the number of pending frames.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.items.Length()
}

// Close rejects further pushes and drops pending frames.
// It returns true only for the call that actually closed the outbox.
func (o *Outbox) Close() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	o.closed = true
	o.items = queue.New()
	close(o.done)
	return true
}

// Closed reports whether Close has been called.
func (o *Outbox) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
