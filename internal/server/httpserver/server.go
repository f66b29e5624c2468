package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"
)

// DefaultReadHeaderTimeout bounds how long a client may take to send headers.
const DefaultReadHeaderTimeout = 10 * time.Second

// ServerConfig configures the listener.
type ServerConfig struct {
	Addr              string
	TLSCertFile       string
	TLSKeyFile        string
	ReadHeaderTimeout time.Duration

	// TLSConfig, when it supplies certificates (GetCertificate or
	// Certificates), is used instead of reading TLSCertFile/TLSKeyFile.
	TLSConfig *tls.Config
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	cfg        ServerConfig
}

// New creates a new HTTP server.
func New(cfg ServerConfig, handler http.Handler) *Server {
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			TLSConfig:         cfg.TLSConfig,
		},
		handler: handler,
		cfg:     cfg,
	}
}

// TLSEnabled reports whether the server terminates TLS.
func (s *Server) TLSEnabled() bool {
	return s.suppliedCerts() || (s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != "")
}

func (s *Server) suppliedCerts() bool {
	tc := s.cfg.TLSConfig
	return tc != nil && (tc.GetCertificate != nil || len(tc.Certificates) > 0)
}

// certFiles returns the paths handed to net/http; empty when the
// certificates come from TLSConfig.
func (s *Server) certFiles() (string, string) {
	if s.suppliedCerts() {
		return "", ""
	}
	return s.cfg.TLSCertFile, s.cfg.TLSKeyFile
}

// ListenAndServe starts the server, using TLS when configured.
// It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	var err error
	if s.TLSEnabled() {
		err = s.httpServer.ListenAndServeTLS(s.certFiles())
	} else {
		err = s.httpServer.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	var err error
	if s.TLSEnabled() {
		cert, key := s.certFiles()
		err = s.httpServer.ServeTLS(ln, cert, key)
	} else {
		err = s.httpServer.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
//
// Hijacked WebSocket connections are not tracked by net/http; close them
// through the WebSocket server first.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
