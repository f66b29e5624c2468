package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/yndnr/pushmesh-go/internal/core/service"
	"github.com/yndnr/pushmesh-go/internal/telemetry/logger"
)

// Verify validates the configuration. All problems are reported together.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyRelay(&cfg.Relay),
		verifyUpstream(&cfg.Upstream),
		verifyHTTPAPI(&cfg.HTTPAPI),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error
	if cfg.HTTP.Addr == "" {
		errs = append(errs, errors.New("server.http.addr is required"))
	} else if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr: %w", err))
	}

	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	}
	for _, f := range []string{cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			errs = append(errs, fmt.Errorf("server.http: %w", err))
		}
	}
	if cfg.HTTP.ReadHeaderTimeout < 0 {
		errs = append(errs, errors.New("server.http.read_header_timeout must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyRelay(cfg *RelaySection) error {
	var errs []error
	if cfg.HeartbeatInterval <= 0 {
		errs = append(errs, errors.New("relay.heartbeat_interval must be positive"))
	}
	if cfg.ClientTimeout <= cfg.HeartbeatInterval {
		errs = append(errs, fmt.Errorf("relay.client_timeout (%s) must be greater than relay.heartbeat_interval (%s)",
			cfg.ClientTimeout, cfg.HeartbeatInterval))
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, errors.New("relay.write_timeout must not be negative"))
	}
	if cfg.MaxMessageBytes < 0 {
		errs = append(errs, errors.New("relay.max_message_bytes must not be negative"))
	}
	if cfg.ReadBufferSize < 0 || cfg.WriteBufferSize < 0 {
		errs = append(errs, errors.New("relay buffer sizes must not be negative"))
	}
	if _, err := service.ParseDeliveryFormat(cfg.DeliveryFormat); err != nil {
		errs = append(errs, fmt.Errorf("relay.delivery_format: %w", err))
	}
	return errors.Join(errs...)
}

// verifyUpstream accepts either host:port or an absolute URL.
func verifyUpstream(cfg *UpstreamSection) error {
	if cfg.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err == nil {
		return nil
	}
	u, err := url.Parse(cfg.Addr)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream.addr %q is neither host:port nor an absolute URL", RedactURL(cfg.Addr))
	}
	return nil
}

func verifyHTTPAPI(cfg *HTTPAPISection) error {
	if cfg.RateLimit < 0 {
		return errors.New("http_api.rate_limit must not be negative")
	}
	if cfg.RateBurst < 0 {
		return errors.New("http_api.rate_burst must not be negative")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch cfg.Format {
	case "", "json", "text":
		return nil
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
}
