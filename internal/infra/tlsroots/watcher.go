package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// CertReloader serves the relay's certificate and reloads it when the
// certificate or key file is rewritten.
//
// A failed reload, e.g. a half-written key during rotation, keeps the
// previous certificate; the next write retries.
type CertReloader struct {
	certFile string
	keyFile  string
	cert     atomic.Pointer[tls.Certificate]
	reloads  atomic.Uint64

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

// ReloaderOption configures a CertReloader.
type ReloaderOption func(*CertReloader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ReloaderOption {
	return func(r *CertReloader) {
		r.logger = logger
	}
}

// NewCertReloader loads the key pair and starts watching both files'
// directories. Call Run (or go Run) to process changes and Stop to release
// the watcher.
func NewCertReloader(certFile, keyFile string, opts ...ReloaderOption) (*CertReloader, error) {
	certAbs, err := filepath.Abs(certFile)
	if err != nil {
		return nil, err
	}
	keyAbs, err := filepath.Abs(keyFile)
	if err != nil {
		return nil, err
	}

	r := &CertReloader{
		certFile: certAbs,
		keyFile:  keyAbs,
		done:     make(chan struct{}),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	// Directories, not files, so editors that replace the file by rename
	// are still seen.
	dirs := map[string]struct{}{filepath.Dir(certAbs): {}, filepath.Dir(keyAbs): {}}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("tlsroots: watch %s: %w", dir, err)
		}
	}
	r.watcher = w
	return r, nil
}

// Run processes file events until Stop is called.
func (r *CertReloader) Run() {
	r.logger.Info("certificate watcher started",
		"cert_file", r.certFile,
		"key_file", r.keyFile,
	)
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Name != r.certFile && event.Name != r.keyFile {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := r.reload(); err != nil {
				r.logger.Warn("certificate reload failed, keeping previous certificate",
					"file", event.Name,
					"error", err,
				)
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("certificate watcher error", "error", err)
		case <-r.done:
			return
		}
	}
}

// Stop ends Run and closes the watcher. It is safe to call more than once.
func (r *CertReloader) Stop() error {
	var err error
	r.stopOnce.Do(func() {
		close(r.done)
		err = r.watcher.Close()
	})
	return err
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.cert.Load(), nil
}

// Reloads reports how many times the key pair has been loaded.
func (r *CertReloader) Reloads() uint64 {
	return r.reloads.Load()
}

// ServerConfig returns TLS settings that always present the current
// certificate.
func (r *CertReloader) ServerConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}

func (r *CertReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}
	r.cert.Store(&cert)
	n := r.reloads.Add(1)
	r.logger.Info("certificate loaded", "cert_file", r.certFile, "generation", n)
	return nil
}
