package wsserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/pushmesh-go/internal/core/domain"
	"github.com/yndnr/pushmesh-go/internal/storage/memory"
	"github.com/yndnr/pushmesh-go/internal/telemetry/logger"
	"github.com/yndnr/pushmesh-go/internal/telemetry/metric"
	"github.com/yndnr/pushmesh-go/pkg/cmap"
)

// Config holds the per-connection settings.
type Config struct {
	HeartbeatInterval time.Duration
	ClientTimeout     time.Duration
	WriteTimeout      time.Duration

	// MaxMessageBytes limits inbound messages; 0 means unlimited.
	MaxMessageBytes int64
	EchoData        bool

	ReadBufferSize  int
	WriteBufferSize int

	// AllowedOrigins restricts the Origin header; empty allows any.
	AllowedOrigins []string
}

// DefaultConfig returns the relay defaults.
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: DefaultHeartbeatInterval,
		ClientTimeout:     DefaultClientTimeout,
		WriteTimeout:      10 * time.Second,
		MaxMessageBytes:   64 * 1024,
		EchoData:          true,
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
	}
}

var errServerShutdown = errors.New("server shutting down")

// Server upgrades destination connections and tracks their sessions.
type Server struct {
	cfg      Config
	registry *memory.Registry
	upgrader websocket.Upgrader
	metrics  *metric.Registry
	logger   *slog.Logger

	sessions *cmap.Map[string, *session]

	// mu orders session admission against Shutdown so wg.Add never
	// races wg.Wait.
	mu           sync.Mutex
	wg           sync.WaitGroup
	shuttingDown atomic.Bool
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics records connection and frame metrics on m.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Server registering connections in registry.
func New(cfg Config, registry *memory.Registry, opts ...Option) (*Server, error) {
	mc := MonitorConfig{Interval: cfg.HeartbeatInterval, Timeout: cfg.ClientTimeout}
	if err := mc.Validate(); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}

	s := &Server{
		cfg:      cfg,
		registry: registry,
		logger:   slog.Default(),
		sessions: cmap.New[string, *session](),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return s, nil
}

// ServeConnect claims id for the caller and serves its WebSocket until
// the connection ends.
//
// Errors are returned only before the upgrade, when nothing has been
// written to w: an invalid identifier, domain.ErrAlreadyConnected, or
// domain.ErrRegistryUnavailable. The caller reports them over HTTP.
func (s *Server) ServeConnect(w http.ResponseWriter, r *http.Request, id string) error {
	log := s.logger.With(slog.String("destination_id", id))
	if reqID := logger.RequestIDFromContext(r.Context()); reqID != "" {
		log = log.With(slog.String("request_id", reqID))
	}

	if err := domain.ValidateDestinationID(id); err != nil {
		s.metrics.ConnectionRejected("invalid_id")
		return err
	}
	if s.shuttingDown.Load() {
		s.metrics.ConnectionRejected("shutting_down")
		return domain.ErrRegistryUnavailable.WithDetails("server shutting down")
	}

	h := domain.NewHandle(id, r.RemoteAddr)
	if err := s.registry.Register(h); err != nil {
		if errors.Is(err, domain.ErrAlreadyConnected) {
			s.metrics.ConnectionRejected("already_connected")
			log.Warn("connection rejected: destination already connected", slog.String("remote_addr", r.RemoteAddr))
		} else {
			s.metrics.ConnectionRejected("registry_unavailable")
			log.Error("connection rejected", slog.Any("error", err))
		}
		return err
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.registry.Remove(h)
		s.metrics.ConnectionRejected("upgrade_failed")
		log.Warn("websocket upgrade failed", slog.Any("error", err))
		return nil
	}

	sess, err := newSession(s, conn, h, log.With(slog.String("instance_id", h.InstanceID.String())))
	if err != nil {
		s.registry.Remove(h)
		_ = conn.Close()
		s.metrics.ConnectionRejected("internal_error")
		log.Error("session setup failed", slog.Any("error", err))
		return nil
	}

	key := h.InstanceID.String()
	if !s.admit(key, sess) {
		sess.shutdown(s.cfg.WriteTimeout)
		s.metrics.ConnectionRejected("shutting_down")
		return nil
	}
	defer s.wg.Done()
	defer s.sessions.Delete(key)

	s.metrics.ConnectionOpened()
	log.Info("destination connected", slog.String("remote_addr", r.RemoteAddr))

	// The request context ends when this handler returns, not before;
	// shutdown reaches the session through its own cancel func.
	reason := sess.run(context.WithoutCancel(r.Context()))

	s.metrics.ConnectionClosed(reason)
	log.Info("destination disconnected",
		slog.String("reason", reason),
		slog.Duration("duration", time.Since(h.ConnectedAt)),
	)
	return nil
}

func (s *Server) admit(key string, sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shuttingDown.Load() {
		return false
	}
	s.wg.Add(1)
	s.sessions.Set(key, sess)
	return true
}

// ActiveSessions returns the number of upgraded connections being served.
func (s *Server) ActiveSessions() int {
	return s.sessions.Count()
}

// Shutdown refuses new connections, closes every session with close code
// 1001 and waits for them to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	already := s.shuttingDown.Swap(true)
	s.mu.Unlock()
	if already {
		return nil
	}

	n := 0
	s.sessions.Range(func(_ string, sess *session) bool {
		sess.shutdown(s.cfg.WriteTimeout)
		n++
		return true
	})
	s.logger.Info("closing websocket sessions", slog.Int("count", n))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser clients do not send Origin.
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}
