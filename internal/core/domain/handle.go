package domain

import (
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// Handle is the relay's representation of one live destination connection.
//
// The registry entry and the connection's own tasks share ownership.
// Everyone else (the router in particular) only gets a Sender.
type Handle struct {
	// ID is the destination identifier claimed by the connection.
	ID string

	// InstanceID tells apart successive connections for the same ID.
	InstanceID ulid.ULID

	RemoteAddr  string
	ConnectedAt time.Time

	outbox   *Outbox
	activity Activity
}

// NewHandle creates a handle with a fresh outbox and activity set to now.
func NewHandle(id, remoteAddr string) *Handle {
	now := time.Now()
	h := &Handle{
		ID:          id,
		InstanceID:  ulid.Make(),
		RemoteAddr:  remoteAddr,
		ConnectedAt: now,
		outbox:      NewOutbox(),
	}
	h.activity.Touch(now)
	return h
}

// Sender returns a copy of the handle's send capability.
func (h *Handle) Sender() Sender {
	return Sender{id: h.ID, instance: h.InstanceID, box: h.outbox}
}

// Outbox returns the connection's outbound queue.
func (h *Handle) Outbox() *Outbox {
	return h.outbox
}

// Activity returns the liveness state of the connection.
func (h *Handle) Activity() *Activity {
	return &h.activity
}

// Same reports whether other is the same connection instance.
func (h *Handle) Same(other *Handle) bool {
	return h != nil && other != nil && h.InstanceID == other.InstanceID
}

// Sender enqueues frames onto one connection's outbox without owning the
// connection's lifecycle. The zero Sender fails every send.
type Sender struct {
	id       string
	instance ulid.ULID
	box      *Outbox
}

// DestinationID returns the identifier the sender delivers to.
func (s Sender) DestinationID() string {
	return s.id
}

// InstanceID returns the connection instance the sender belongs to.
func (s Sender) InstanceID() ulid.ULID {
	return s.instance
}

// Send enqueues f. It fails with ErrDeliveryFailed once the connection is
// tearing down.
func (s Sender) Send(f Frame) error {
	if s.box == nil {
		return ErrDeliveryFailed.WithDetails("no connection")
	}
	return s.box.Push(f)
}

// SendText enqueues a text frame carrying payload.
func (s Sender) SendText(payload string) error {
	return s.Send(TextFrame(payload))
}

// Activity is the last-activity timestamp of a connection.
type Activity struct {
	last atomic.Int64
}

// Touch records activity at t.
func (a *Activity) Touch(t time.Time) {
	a.last.Store(t.UnixNano())
}

// Last returns the last recorded activity.
func (a *Activity) Last() time.Time {
	return time.Unix(0, a.last.Load())
}

// Idle returns how long the connection has been silent as of now.
func (a *Activity) Idle(now time.Time) time.Duration {
	return now.Sub(a.Last())
}
