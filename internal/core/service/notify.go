package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yndnr/pushmesh-go/internal/core/domain"
	"github.com/yndnr/pushmesh-go/internal/telemetry/metric"
)

// ConnectionDirectory resolves a destination to its send capability.
type ConnectionDirectory interface {
	// Lookup returns domain.ErrNotConnected when id has no live connection
	// and domain.ErrRegistryUnavailable when the directory cannot be read.
	Lookup(id string) (domain.Sender, error)
}

// Outcome is the result of routing one notification.
type Outcome int

const (
	// OutcomeRejected means the message body failed validation or the
	// request was cancelled; the destination was never looked up.
	OutcomeRejected Outcome = iota
	OutcomeDelivered
	OutcomeNotConnected
	OutcomeDeliveryFailed
)

// String returns the outcome label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeNotConnected:
		return "not_connected"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	default:
		return "rejected"
	}
}

// DeliveryFormat selects what the destination receives.
type DeliveryFormat string

const (
	// FormatRaw delivers the message text unchanged.
	FormatRaw DeliveryFormat = "raw"
	// FormatEnvelope delivers a JSON object with sender and timestamp.
	FormatEnvelope DeliveryFormat = "envelope"
)

// ParseDeliveryFormat parses a configured format. Empty means raw.
func ParseDeliveryFormat(s string) (DeliveryFormat, error) {
	switch DeliveryFormat(s) {
	case "", FormatRaw:
		return FormatRaw, nil
	case FormatEnvelope:
		return FormatEnvelope, nil
	default:
		return "", fmt.Errorf("unknown delivery format %q", s)
	}
}

// Envelope is the payload delivered in FormatEnvelope.
type Envelope struct {
	SenderID string `json:"sender_id"`
	Message  string `json:"message"`
	SentAt   int64  `json:"sent_at"` // Unix ms
}

// NotifyConfig configures NotifyService.
type NotifyConfig struct {
	// MaxMessageBytes bounds the message size; 0 disables the check.
	MaxMessageBytes int
	Format          DeliveryFormat
}

// NotifyService routes notifications to live connections.
//
// Routing is best effort: a message for a destination that is not
// connected is dropped, and nothing is ever retried.
type NotifyService struct {
	dir     ConnectionDirectory
	cfg     NotifyConfig
	metrics *metric.Registry
	logger  *slog.Logger
	now     func() time.Time
}

// NotifyOption configures NotifyService.
type NotifyOption func(*NotifyService)

// WithMetrics records routing outcomes on m.
func WithMetrics(m *metric.Registry) NotifyOption {
	return func(s *NotifyService) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) NotifyOption {
	return func(s *NotifyService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for envelopes.
func WithClock(now func() time.Time) NotifyOption {
	return func(s *NotifyService) { s.now = now }
}

// NewNotifyService creates a NotifyService over dir.
func NewNotifyService(dir ConnectionDirectory, cfg NotifyConfig, opts ...NotifyOption) *NotifyService {
	if cfg.Format == "" {
		cfg.Format = FormatRaw
	}
	s := &NotifyService{
		dir:    dir,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Route delivers n to its destination if that destination is connected.
//
// The returned error is nil only for OutcomeDelivered. NotConnected maps to
// domain.ErrNotConnected; DeliveryFailed carries domain.ErrDeliveryFailed
// or domain.ErrRegistryUnavailable.
func (s *NotifyService) Route(ctx context.Context, n *domain.Notification) (Outcome, error) {
	outcome, err := s.route(ctx, n)
	s.metrics.RecordNotification(outcome.String())

	attrs := []any{
		slog.String("destination_id", n.DestinationID),
		slog.String("sender_id", n.SenderID),
		slog.String("outcome", outcome.String()),
		slog.Int("message_len", len(n.Message)),
	}
	switch outcome {
	case OutcomeDelivered:
		s.logger.DebugContext(ctx, "notification delivered", attrs...)
	case OutcomeNotConnected:
		s.logger.InfoContext(ctx, "notification dropped", attrs...)
	default:
		s.logger.WarnContext(ctx, "notification not routed", append(attrs, slog.Any("error", err))...)
	}
	return outcome, err
}

func (s *NotifyService) route(ctx context.Context, n *domain.Notification) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeRejected, domain.ErrBadRequest.WithDetails("request cancelled").WithCause(err)
	}
	if err := n.Validate(s.cfg.MaxMessageBytes); err != nil {
		return OutcomeRejected, err
	}
	if n.SentAt.IsZero() {
		n.SentAt = s.now()
	}

	sender, err := s.dir.Lookup(n.DestinationID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotConnected):
		return OutcomeNotConnected, err
	default:
		return OutcomeDeliveryFailed, err
	}

	payload, err := s.payload(n)
	if err != nil {
		return OutcomeDeliveryFailed, domain.ErrInternalServer.WithCause(err)
	}
	if err := sender.SendText(payload); err != nil {
		return OutcomeDeliveryFailed, err
	}
	return OutcomeDelivered, nil
}

func (s *NotifyService) payload(n *domain.Notification) (string, error) {
	if s.cfg.Format != FormatEnvelope {
		return n.Message, nil
	}
	b, err := json.Marshal(Envelope{
		SenderID: n.SenderID,
		Message:  n.Message,
		SentAt:   n.SentAt.UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
