package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr          = "127.0.0.1:8080"
	DefaultReadHeaderTimeout = 10 * time.Second

	DefaultHeartbeatInterval = 5 * time.Second
	DefaultClientTimeout     = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultMaxMessageBytes   = 64 * 1024
	DefaultDeliveryFormat    = "raw"
	DefaultBufferSize        = 1024

	DefaultRateLimit = 1000
	DefaultRateBurst = 2000

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:              DefaultHTTPAddr,
				ReadHeaderTimeout: DefaultReadHeaderTimeout,
			},
		},
		Relay: RelaySection{
			HeartbeatInterval: DefaultHeartbeatInterval,
			ClientTimeout:     DefaultClientTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			MaxMessageBytes:   DefaultMaxMessageBytes,
			EchoData:          true,
			DeliveryFormat:    DefaultDeliveryFormat,
			ReadBufferSize:    DefaultBufferSize,
			WriteBufferSize:   DefaultBufferSize,
		},
		HTTPAPI: HTTPAPISection{
			RateLimit: DefaultRateLimit,
			RateBurst: DefaultRateBurst,
			Audit:     true,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
