package connection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/pushmesh-go/internal/infra/buildinfo"
)

// Message is one data frame received by a Listener.
type Message struct {
	Binary bool
	Data   []byte
	At     time.Time
}

// Listener holds a destination connection open and reports what arrives.
//
// Pings are answered by the websocket library's default handler, so the
// server's liveness probe keeps the connection alive.
type Listener struct {
	url    string
	dialer *websocket.Dialer
}

// NewListener prepares a listener for destination id on server.
func NewListener(server, id string, opts ...Option) (*Listener, error) {
	if id == "" {
		return nil, errors.New("destination id required")
	}
	o := buildOptions(opts)
	u, err := url.Parse(normalizeServer(server))
	if err != nil {
		return nil, fmt.Errorf("parse server address: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	prefix := strings.TrimRight(u.Path, "/") + "/connect/"
	u.Path = prefix + id
	u.RawPath = prefix + url.PathEscape(id)

	return &Listener{
		url: u.String(),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
			TLSClientConfig:  o.tls,
		},
	}, nil
}

// URL returns the WebSocket URL the listener dials.
func (l *Listener) URL() string {
	return l.url
}

// Listen connects and calls onMessage for every data frame until ctx is
// done or the server closes the connection. Cancelling ctx closes the
// connection normally and returns nil.
func (l *Listener) Listen(ctx context.Context, onMessage func(Message)) error {
	header := http.Header{"User-Agent": []string{buildinfo.UserAgent("pushmesh-cli")}}
	conn, resp, err := l.dialer.DialContext(ctx, l.url, header)
	if err != nil {
		if resp != nil {
			if perr := ParseResponse(resp, nil); perr != nil {
				return fmt.Errorf("connect %s: %w", l.url, perr)
			}
		}
		return fmt.Errorf("connect %s: %w", l.url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	})
	defer stop()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				return fmt.Errorf("server closed connection: %w", err)
			}
			return fmt.Errorf("read: %w", err)
		}
		onMessage(Message{Binary: kind == websocket.BinaryMessage, Data: data, At: time.Now()})
	}
}
