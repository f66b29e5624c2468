package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/pushmesh-go/internal/core/domain"
	"github.com/yndnr/pushmesh-go/internal/core/service"
	"github.com/yndnr/pushmesh-go/internal/server/wsserver"
	"github.com/yndnr/pushmesh-go/internal/storage/memory"
	"github.com/yndnr/pushmesh-go/internal/telemetry/logger"
)

// maxBodyOverhead is added to the message limit when bounding request bodies.
const maxBodyOverhead = 4 << 10

// Config wires the handler to its collaborators.
type Config struct {
	NotifyService *service.NotifyService
	Registry      *memory.Registry
	WSServer      *wsserver.Server

	// Metrics serves GET /metrics; nil disables the route.
	Metrics http.Handler

	// MaxMessageBytes bounds notification bodies; 0 leaves them unbounded.
	MaxMessageBytes int

	Version string
	Logger  *slog.Logger
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	notifySvc *service.NotifyService
	registry  *memory.Registry
	ws        *wsserver.Server
	metrics   http.Handler
	maxBody   int64
	version   string
	logger    *slog.Logger
	mux       *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		notifySvc: cfg.NotifyService,
		registry:  cfg.Registry,
		ws:        cfg.WSServer,
		metrics:   cfg.Metrics,
		version:   cfg.Version,
		logger:    cfg.Logger,
		mux:       http.NewServeMux(),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if cfg.MaxMessageBytes > 0 {
		h.maxBody = int64(cfg.MaxMessageBytes) + maxBodyOverhead
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /connections", h.handleListConnections)
	h.mux.HandleFunc("POST /notify", h.handleNotify)
	h.mux.HandleFunc("POST /notify-machine", h.handleNotifyMachine)

	h.mux.HandleFunc("GET /connect/{destination_id}", h.handleConnect)
	h.mux.HandleFunc("GET /ws/{destination_id}", h.handleConnect)

	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics)
	}
}

// writeJSON writes a success response with the standard envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	h.writeEnvelope(w, r, status, NewResponse(message, data))
}

// writeError writes an error response with the standard envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message, detail string) {
	w.Header().Set("X-Error-Code", code)
	h.writeEnvelope(w, r, status, NewErrorResponse(code, message, detail))
}

func (h *Handler) writeEnvelope(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	if requestID := getRequestID(w, r); requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// getRequestID returns the request ID set by the RequestID middleware.
func getRequestID(w http.ResponseWriter, r *http.Request) string {
	if reqID := logger.RequestIDFromContext(r.Context()); reqID != "" {
		return reqID
	}
	return w.Header().Get("X-Request-ID")
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		status := errorCodeToHTTPStatus(de.Code)
		if status >= http.StatusInternalServerError {
			logger.L(r.Context()).Error("request failed", "code", de.Code, "error", err)
		}
		h.writeError(w, r, status, de.Code, de.Message, de.Details)
		return
	}

	// Generic internal error
	logger.L(r.Context()).Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, domain.ErrInternalServer.Message, "")
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "PM-ARG-"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
