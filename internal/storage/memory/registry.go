package memory

import (
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/yndnr/pushmesh-go/internal/core/domain"
	"github.com/yndnr/pushmesh-go/pkg/cmap"
)

// ConnectionInfo is a point-in-time view of one registered connection.
type ConnectionInfo struct {
	ID           string    `json:"id" yaml:"id"`
	InstanceID   string    `json:"instance_id" yaml:"instance_id"`
	RemoteAddr   string    `json:"remote_addr,omitempty" yaml:"remote_addr,omitempty"`
	ConnectedAt  time.Time `json:"connected_at" yaml:"connected_at"`
	LastActivity time.Time `json:"last_activity" yaml:"last_activity"`
}

// Registry maps destination identifiers to live connection handles.
//
// At most one handle is registered per identifier. After Close the
// registry refuses Register, Lookup, List and Count with
// domain.ErrRegistryUnavailable; Unregister and Remove keep working so
// connections that are still tearing down can clean up.
type Registry struct {
	handles *cmap.Map[string, *domain.Handle]
	closed  atomic.Bool
	logger  *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report recovered faults.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithShards sets the number of shards. Rounded up to a power of two.
func WithShards(n int) Option {
	return func(r *Registry) {
		r.handles = cmap.NewWithShards[string, *domain.Handle](n)
	}
}

// NewRegistry creates an empty, open registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		handles: cmap.New[string, *domain.Handle](),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register claims h.ID for h. The presence check and the insert happen
// under a single shard lock.
func (r *Registry) Register(h *domain.Handle) (err error) {
	defer r.recoverFault("register", &err)

	if h == nil {
		return domain.ErrInvalidArgument.WithDetails("nil handle")
	}
	if r.closed.Load() {
		return domain.ErrRegistryUnavailable.WithDetails("registry closed")
	}
	if !r.handles.SetIfAbsent(h.ID, h) {
		return domain.ErrAlreadyConnected.WithDetails(h.ID)
	}
	return nil
}

// Unregister removes whatever handle is registered under id.
// Removing an absent id is a no-op.
func (r *Registry) Unregister(id string) (err error) {
	defer r.recoverFault("unregister", &err)

	if h, ok := r.handles.Pop(id); ok {
		r.logger.Debug("connection unregistered", "destination_id", id, "instance_id", h.InstanceID.String())
	}
	return nil
}

// Remove deletes h only if it is still the handle registered under h.ID.
// A connection tearing down late therefore never evicts a newer
// connection for the same identifier.
func (r *Registry) Remove(h *domain.Handle) (removed bool) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("registry remove panicked", "panic", p)
			removed = false
		}
	}()

	if h == nil {
		return false
	}
	return r.handles.DeleteIf(h.ID, h.Same)
}

// Lookup returns the send capability of the connection registered under
// id, or domain.ErrNotConnected.
func (r *Registry) Lookup(id string) (s domain.Sender, err error) {
	defer r.recoverFault("lookup", &err)

	if r.closed.Load() {
		return domain.Sender{}, domain.ErrRegistryUnavailable.WithDetails("registry closed")
	}
	h, ok := r.handles.Get(id)
	if !ok {
		return domain.Sender{}, domain.ErrNotConnected.WithDetails(id)
	}
	return h.Sender(), nil
}

// IsConnected reports whether id currently has a registered connection.
func (r *Registry) IsConnected(id string) bool {
	return !r.closed.Load() && r.handles.Has(id)
}

// List returns the registered connections sorted by identifier.
func (r *Registry) List() (infos []ConnectionInfo, err error) {
	defer r.recoverFault("list", &err)

	if r.closed.Load() {
		return nil, domain.ErrRegistryUnavailable.WithDetails("registry closed")
	}

	infos = make([]ConnectionInfo, 0, r.handles.Count())
	r.handles.Range(func(id string, h *domain.Handle) bool {
		infos = append(infos, ConnectionInfo{
			ID:           id,
			InstanceID:   h.InstanceID.String(),
			RemoteAddr:   h.RemoteAddr,
			ConnectedAt:  h.ConnectedAt,
			LastActivity: h.Activity().Last(),
		})
		return true
	})
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() (ids []string, err error) {
	defer r.recoverFault("ids", &err)

	if r.closed.Load() {
		return nil, domain.ErrRegistryUnavailable.WithDetails("registry closed")
	}
	ids = r.handles.Keys()
	sort.Strings(ids)
	return ids, nil
}

// Count returns the number of registered connections.
func (r *Registry) Count() (n int, err error) {
	defer r.recoverFault("count", &err)

	if r.closed.Load() {
		return 0, domain.ErrRegistryUnavailable.WithDetails("registry closed")
	}
	return r.handles.Count(), nil
}

// Close marks the registry unavailable. It is idempotent.
func (r *Registry) Close() {
	if r.closed.CompareAndSwap(false, true) {
		r.logger.Info("connection registry closed", "remaining", r.handles.Count())
	}
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool {
	return r.closed.Load()
}

func (r *Registry) recoverFault(op string, err *error) {
	if p := recover(); p != nil {
		r.logger.Error("registry operation panicked", "op", op, "panic", p)
		*err = domain.ErrRegistryUnavailable.WithDetails(fmt.Sprintf("%s: %v", op, p))
	}
}
