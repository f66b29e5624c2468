package config

import "time"

// ServerConfig is the root configuration for pushmesh-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server" yaml:"server"`
	Relay    RelaySection    `koanf:"relay" yaml:"relay"`
	Upstream UpstreamSection `koanf:"upstream" yaml:"upstream"`
	HTTPAPI  HTTPAPISection  `koanf:"http_api" yaml:"http_api"`
	Metrics  MetricsSection  `koanf:"metrics" yaml:"metrics"`
	Log      LogSection      `koanf:"log" yaml:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http" yaml:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr              string        `koanf:"addr" yaml:"addr"`
	TLSCertFile       string        `koanf:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile        string        `koanf:"tls_key_file" yaml:"tls_key_file"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" yaml:"read_header_timeout"`
}

// RelaySection configures WebSocket sessions and delivery.
type RelaySection struct {
	// HeartbeatInterval is the liveness probe period.
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval" yaml:"heartbeat_interval"`

	// ClientTimeout is the idle time after which a connection is dropped.
	// Must be greater than HeartbeatInterval.
	ClientTimeout time.Duration `koanf:"client_timeout" yaml:"client_timeout"`

	WriteTimeout    time.Duration `koanf:"write_timeout" yaml:"write_timeout"`
	MaxMessageBytes int           `koanf:"max_message_bytes" yaml:"max_message_bytes"`

	// EchoData sends inbound text/binary frames back to the client.
	EchoData bool `koanf:"echo_data" yaml:"echo_data"`

	// DeliveryFormat is "raw" or "envelope".
	DeliveryFormat string `koanf:"delivery_format" yaml:"delivery_format"`

	ReadBufferSize  int      `koanf:"read_buffer_size" yaml:"read_buffer_size"`
	WriteBufferSize int      `koanf:"write_buffer_size" yaml:"write_buffer_size"`
	AllowedOrigins  []string `koanf:"allowed_origins" yaml:"allowed_origins"`
}

// UpstreamSection describes the trusted service that submits notifications.
type UpstreamSection struct {
	Addr string `koanf:"addr" yaml:"addr"`
}

// HTTPAPISection configures the HTTP middleware chain.
type HTTPAPISection struct {
	// RateLimit is requests/second per client IP; 0 disables limiting.
	RateLimit          float64  `koanf:"rate_limit" yaml:"rate_limit"`
	RateBurst          int      `koanf:"rate_burst" yaml:"rate_burst"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" yaml:"cors_allowed_origins"`
	Audit              bool     `koanf:"audit" yaml:"audit"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled" yaml:"enabled"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}
