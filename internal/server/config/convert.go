package config

import (
	"fmt"

	"github.com/yndnr/pushmesh-go/internal/core/service"
	"github.com/yndnr/pushmesh-go/internal/server/httpserver"
	"github.com/yndnr/pushmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/pushmesh-go/internal/server/wsserver"
	"github.com/yndnr/pushmesh-go/internal/telemetry/logger"
)

// ToWSServerConfig maps the relay section onto the WebSocket server.
func ToWSServerConfig(cfg *ServerConfig) wsserver.Config {
	return wsserver.Config{
		HeartbeatInterval: cfg.Relay.HeartbeatInterval,
		ClientTimeout:     cfg.Relay.ClientTimeout,
		WriteTimeout:      cfg.Relay.WriteTimeout,
		MaxMessageBytes:   int64(cfg.Relay.MaxMessageBytes),
		EchoData:          cfg.Relay.EchoData,
		ReadBufferSize:    cfg.Relay.ReadBufferSize,
		WriteBufferSize:   cfg.Relay.WriteBufferSize,
		AllowedOrigins:    cfg.Relay.AllowedOrigins,
	}
}

// ToNotifyConfig maps the relay section onto the notification router.
func ToNotifyConfig(cfg *ServerConfig) (service.NotifyConfig, error) {
	format, err := service.ParseDeliveryFormat(cfg.Relay.DeliveryFormat)
	if err != nil {
		return service.NotifyConfig{}, fmt.Errorf("relay.delivery_format: %w", err)
	}
	return service.NotifyConfig{
		MaxMessageBytes: cfg.Relay.MaxMessageBytes,
		Format:          format,
	}, nil
}

// ToHTTPServerConfig maps server.http onto the listener.
func ToHTTPServerConfig(cfg *ServerConfig) httpserver.ServerConfig {
	return httpserver.ServerConfig{
		Addr:              cfg.Server.HTTP.Addr,
		TLSCertFile:       cfg.Server.HTTP.TLSCertFile,
		TLSKeyFile:        cfg.Server.HTTP.TLSKeyFile,
		ReadHeaderTimeout: cfg.Server.HTTP.ReadHeaderTimeout,
	}
}

// ToRouterConfig maps http_api onto the middleware chain. Handler
// dependencies are filled in by the caller.
func ToRouterConfig(cfg *ServerConfig) httpserver.RouterConfig {
	return httpserver.RouterConfig{
		Handler: handler.Config{
			MaxMessageBytes: cfg.Relay.MaxMessageBytes,
		},
		CORSAllowedOrigins: cfg.HTTPAPI.CORSAllowedOrigins,
		RateLimit:          cfg.HTTPAPI.RateLimit,
		RateBurst:          cfg.HTTPAPI.RateBurst,
		EnableAudit:        cfg.HTTPAPI.Audit,
	}
}

// ToLoggerConfig maps the log section.
func ToLoggerConfig(cfg *ServerConfig) logger.Config {
	lc := logger.DefaultConfig()
	if cfg.Log.Level != "" {
		lc.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		lc.Format = cfg.Log.Format
	}
	return lc
}
