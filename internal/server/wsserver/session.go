package wsserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/pushmesh-go/internal/core/domain"
)

// Disconnect reasons reported in logs and metrics.
const (
	disconnectClientClosed   = "client_closed"
	disconnectTimeout        = "timeout"
	disconnectProbeFailed    = "probe_failed"
	disconnectReadError      = "read_error"
	disconnectWriteError     = "write_error"
	disconnectServerShutdown = "server_shutdown"
)

var (
	errPeerClosed    = errors.New("peer closed the connection")
	errClientTimeout = errors.New("client heartbeat timeout")
	errOutboxClosed  = errors.New("outbox closed")
)

type probeError struct{ err error }

func (e *probeError) Error() string { return "liveness probe failed: " + e.err.Error() }
func (e *probeError) Unwrap() error { return e.err }

type readError struct{ err error }

func (e *readError) Error() string { return "read: " + e.err.Error() }
func (e *readError) Unwrap() error { return e.err }

type writeError struct{ err error }

func (e *writeError) Error() string { return "write: " + e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

// session serves one upgraded connection.
type session struct {
	srv     *Server
	conn    *websocket.Conn
	handle  *domain.Handle
	monitor *Monitor
	logger  *slog.Logger
	opts    TranslateOptions

	mu     sync.Mutex
	cancel context.CancelCauseFunc

	teardownOnce sync.Once
}

func newSession(srv *Server, conn *websocket.Conn, h *domain.Handle, log *slog.Logger) (*session, error) {
	s := &session{
		srv:    srv,
		conn:   conn,
		handle: h,
		logger: log,
		opts:   TranslateOptions{EchoData: srv.cfg.EchoData},
	}
	mon, err := NewMonitor(
		MonitorConfig{Interval: srv.cfg.HeartbeatInterval, Timeout: srv.cfg.ClientTimeout},
		h.Activity(),
		s.probe,
	)
	if err != nil {
		return nil, err
	}
	s.monitor = mon
	return s, nil
}

// run serves the connection until it ends and returns the disconnect reason.
func (s *session) run(parent context.Context) string {
	ctx, cancel := context.WithCancelCause(parent)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel(nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop() })
	g.Go(func() error { return s.writeLoop(gctx) })
	g.Go(func() error { return s.monitorLoop(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		s.teardown()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		if cause := context.Cause(ctx); cause != nil {
			err = cause
		}
	}

	reason := classify(err)
	switch reason {
	case disconnectClientClosed, disconnectServerShutdown:
		s.logger.Debug("session ended", slog.String("reason", reason))
	default:
		s.logger.Debug("session ended", slog.String("reason", reason), slog.Any("error", err))
	}
	return reason
}

// shutdown sends a going-away close frame and stops the session.
func (s *session) shutdown(writeTimeout time.Duration) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	s.srv.metrics.RecordFrame("out", domain.FrameClose.String())

	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel(errServerShutdown)
	} else {
		s.teardown()
	}
}

// teardown releases the registry slot, the outbox and the socket.
func (s *session) teardown() {
	s.teardownOnce.Do(func() {
		s.srv.registry.Remove(s.handle)
		s.handle.Outbox().Close()
		_ = s.conn.Close()
	})
}

func (s *session) readLoop() error {
	cfg := s.srv.cfg
	if cfg.MaxMessageBytes > 0 {
		s.conn.SetReadLimit(cfg.MaxMessageBytes)
	}
	s.conn.SetPingHandler(func(data string) error {
		return s.apply(domain.Frame{Kind: domain.FramePing, Payload: []byte(data)})
	})
	s.conn.SetPongHandler(func(data string) error {
		return s.apply(domain.Frame{Kind: domain.FramePong, Payload: []byte(data)})
	})
	s.conn.SetCloseHandler(func(code int, text string) error {
		_ = s.apply(domain.Frame{Kind: domain.FrameClose, Payload: []byte(text), CloseCode: code})
		return nil
	})

	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				return errPeerClosed
			}
			return &readError{err: err}
		}

		kind := domain.FrameText
		if mt == websocket.BinaryMessage {
			kind = domain.FrameBinary
		}
		if err := s.apply(domain.Frame{Kind: kind, Payload: data}); err != nil {
			return err
		}
	}
}

// apply runs one inbound frame through Translate and carries out the action.
func (s *session) apply(f domain.Frame) error {
	s.srv.metrics.RecordFrame("in", f.Kind.String())

	act := Translate(f, s.opts)
	if act.Refresh {
		s.handle.Activity().Touch(time.Now())
	}
	if act.Reply != nil {
		switch act.Reply.Kind {
		case domain.FramePong, domain.FrameClose:
			// Control replies bypass the outbox so they are not stuck
			// behind queued data.
			if err := s.writeControl(*act.Reply); err != nil && !act.Teardown {
				return &writeError{err: err}
			}
		default:
			if err := s.handle.Outbox().Push(*act.Reply); err != nil {
				return errOutboxClosed
			}
		}
	}
	if act.Teardown {
		return errPeerClosed
	}
	return nil
}

func (s *session) writeLoop(ctx context.Context) error {
	box := s.handle.Outbox()
	var buf []domain.Frame
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-box.Done():
			return errOutboxClosed
		case <-box.Ready():
		}

		buf = box.Drain(buf[:0])
		for _, f := range buf {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := s.write(f); err != nil {
				return &writeError{err: err}
			}
		}
	}
}

func (s *session) write(f domain.Frame) error {
	switch f.Kind {
	case domain.FrameText, domain.FrameBinary:
		mt := websocket.TextMessage
		if f.Kind == domain.FrameBinary {
			mt = websocket.BinaryMessage
		}
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.srv.cfg.WriteTimeout)); err != nil {
			return err
		}
		if err := s.conn.WriteMessage(mt, f.Payload); err != nil {
			return err
		}
		s.srv.metrics.RecordFrame("out", f.Kind.String())
		return nil
	default:
		return s.writeControl(f)
	}
}

func (s *session) writeControl(f domain.Frame) error {
	var (
		mt   int
		data = f.Payload
	)
	switch f.Kind {
	case domain.FramePing:
		mt = websocket.PingMessage
	case domain.FramePong:
		mt = websocket.PongMessage
	case domain.FrameClose:
		mt = websocket.CloseMessage
		code := f.CloseCode
		if code == 0 {
			code = websocket.CloseNoStatusReceived
		}
		data = websocket.FormatCloseMessage(code, string(f.Payload))
	default:
		return fmt.Errorf("cannot write %s frame", f.Kind)
	}

	err := s.conn.WriteControl(mt, data, time.Now().Add(s.srv.cfg.WriteTimeout))
	if err != nil {
		return err
	}
	s.srv.metrics.RecordFrame("out", f.Kind.String())
	return nil
}

func (s *session) probe() error {
	if err := s.writeControl(domain.Frame{Kind: domain.FramePing}); err != nil {
		return err
	}
	s.srv.metrics.IncLivenessProbe()
	return nil
}

func (s *session) monitorLoop(ctx context.Context) error {
	reason, err := s.monitor.Run(ctx)
	switch reason {
	case ReasonTimeout:
		s.logger.Info("client heartbeat timed out",
			slog.Time("last_activity", s.handle.Activity().Last()),
		)
		return errClientTimeout
	case ReasonProbeFailed:
		return &probeError{err: err}
	default:
		return ctx.Err()
	}
}

func classify(err error) string {
	var (
		pe *probeError
		re *readError
		we *writeError
	)
	switch {
	case err == nil, errors.Is(err, errPeerClosed), errors.Is(err, errOutboxClosed):
		return disconnectClientClosed
	case errors.Is(err, errServerShutdown):
		return disconnectServerShutdown
	case errors.Is(err, errClientTimeout):
		return disconnectTimeout
	case errors.As(err, &pe):
		return disconnectProbeFailed
	case errors.As(err, &re):
		if errors.Is(re.err, net.ErrClosed) {
			return disconnectClientClosed
		}
		return disconnectReadError
	case errors.As(err, &we):
		return disconnectWriteError
	default:
		return disconnectClientClosed
	}
}
