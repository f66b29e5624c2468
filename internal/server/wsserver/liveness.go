package wsserver

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/yndnr/pushmesh-go/internal/core/domain"
)

// Liveness defaults.
const (
	DefaultHeartbeatInterval = 5 * time.Second
	DefaultClientTimeout     = 10 * time.Second
)

// MonitorState is the state of a liveness monitor.
type MonitorState int32

const (
	StateActive MonitorState = iota
	StateTerminated
)

func (s MonitorState) String() string {
	if s == StateTerminated {
		return "terminated"
	}
	return "active"
}

// TerminationReason says why a monitor stopped.
type TerminationReason string

const (
	ReasonTimeout     TerminationReason = "timeout"
	ReasonProbeFailed TerminationReason = "probe_failed"
	ReasonCancelled   TerminationReason = "cancelled"
)

// MonitorConfig holds the probe period and the silence limit.
type MonitorConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Validate requires a positive interval and a timeout longer than it.
func (c MonitorConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive, got %s", c.Interval)
	}
	if c.Timeout <= c.Interval {
		return fmt.Errorf("client timeout (%s) must be greater than heartbeat interval (%s)", c.Timeout, c.Interval)
	}
	return nil
}

// ProbeFunc sends one ping to the peer.
type ProbeFunc func() error

// Monitor watches one connection's activity and probes it periodically.
//
// On every tick it compares the time since the last activity with the
// timeout: past it the monitor terminates, otherwise it sends a probe.
// The monitor terminates exactly once and never probes afterwards.
type Monitor struct {
	cfg      MonitorConfig
	activity *domain.Activity
	probe    ProbeFunc
	now      func() time.Time

	state  atomic.Int32
	reason atomic.Value // TerminationReason
}

// NewMonitor creates an Active monitor.
func NewMonitor(cfg MonitorConfig, activity *domain.Activity, probe ProbeFunc) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if activity == nil || probe == nil {
		return nil, fmt.Errorf("monitor needs an activity source and a probe")
	}
	return &Monitor{
		cfg:      cfg,
		activity: activity,
		probe:    probe,
		now:      time.Now,
	}, nil
}

// Run blocks until the monitor terminates and returns the reason. The
// error is the probe failure for ReasonProbeFailed and nil otherwise.
func (m *Monitor) Run(ctx context.Context) (TerminationReason, error) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return m.terminate(ReasonCancelled), nil
		case <-ticker.C:
		}

		// Cancellation wins over a tick that fired at the same time.
		if ctx.Err() != nil {
			return m.terminate(ReasonCancelled), nil
		}

		if m.activity.Idle(m.now()) > m.cfg.Timeout {
			return m.terminate(ReasonTimeout), nil
		}
		if err := m.probe(); err != nil {
			return m.terminate(ReasonProbeFailed), err
		}
	}
}

// State returns the current state.
func (m *Monitor) State() MonitorState {
	return MonitorState(m.state.Load())
}

// Reason returns the termination reason, or "" while active.
func (m *Monitor) Reason() TerminationReason {
	r, _ := m.reason.Load().(TerminationReason)
	return r
}

func (m *Monitor) terminate(reason TerminationReason) TerminationReason {
	if m.state.CompareAndSwap(int32(StateActive), int32(StateTerminated)) {
		m.reason.Store(reason)
	}
	return m.Reason()
}
