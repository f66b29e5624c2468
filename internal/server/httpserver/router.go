package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/pushmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/pushmesh-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler carries the services behind the API routes.
	Handler handler.Config

	// Logger for request logging.
	Logger *slog.Logger

	// Metrics records request latency; nil disables it.
	Metrics *metric.Registry

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = allow all).
	CORSAllowedOrigins []string

	// RateLimit is the per-IP request rate (requests/second); 0 disables limiting.
	RateLimit float64
	RateBurst int

	// EnableAudit enables audit logging for all requests.
	EnableAudit bool
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:   1000,
		RateBurst:   2000,
		EnableAudit: true,
	}
}

// NewRouter creates the HTTP handler with all routes and middleware.
//
// Order: Recover -> RequestID -> Metrics -> Audit -> RateLimit -> CORS -> routes.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	hcfg := cfg.Handler
	if hcfg.Logger == nil {
		hcfg.Logger = log
	}

	middlewares := []Middleware{
		Recover(log),
		RequestID(),
		Metrics(cfg.Metrics),
	}
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit(log))
	}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	middlewares = append(middlewares, CORS(cfg.CORSAllowedOrigins))

	return Chain(handler.New(hcfg), middlewares...)
}
