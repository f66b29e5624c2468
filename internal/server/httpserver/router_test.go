package httpserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/pushmesh-go/internal/core/service"
	"github.com/yndnr/pushmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/pushmesh-go/internal/server/wsserver"
	"github.com/yndnr/pushmesh-go/internal/storage/memory"
	"github.com/yndnr/pushmesh-go/internal/telemetry/metric"
)

func newTestRouter(t *testing.T, cfg RouterConfig) (http.Handler, *memory.Registry) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := memory.NewRegistry(memory.WithLogger(log))
	ws, err := wsserver.New(wsserver.DefaultConfig(), reg, wsserver.WithLogger(log))
	if err != nil {
		t.Fatalf("wsserver.New: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = ws.Shutdown(ctx)
	})

	cfg.Logger = log
	cfg.Handler = handler.Config{
		NotifyService:   service.NewNotifyService(reg, service.NotifyConfig{}),
		Registry:        reg,
		WSServer:        ws,
		MaxMessageBytes: 1024,
		Version:         "test",
	}
	if cfg.Metrics != nil {
		cfg.Handler.Metrics = cfg.Metrics.Handler()
	}
	return NewRouter(cfg), reg
}

func TestNewRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t, DefaultRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestNewRouter_RequestIDPropagates(t *testing.T) {
	router, _ := newTestRouter(t, DefaultRouterConfig())

	req := httptest.NewRequest("POST", "/notify", strings.NewReader(`{"destination_id":"nobody","message":"x"}`))
	req.Header.Set("X-Request-ID", "req-abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Errorf("X-Request-ID = %q", got)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "PM-CONN-4040" {
		t.Errorf("X-Error-Code = %q", got)
	}
}

func TestNewRouter_RateLimit(t *testing.T) {
	cfg := DefaultRouterConfig()
	cfg.RateLimit = 1
	cfg.RateBurst = 1
	router, _ := newTestRouter(t, cfg)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/health", nil)
		req.RemoteAddr = "10.1.1.1:5000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
}

func TestNewRouter_Metrics(t *testing.T) {
	cfg := DefaultRouterConfig()
	cfg.Metrics = metric.NewRegistry()
	router, _ := newTestRouter(t, cfg)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/connections", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `route="/connections"`) {
		t.Error("expected /connections latency observation")
	}
}

func TestNewRouter_WebSocketThroughMiddleware(t *testing.T) {
	router, reg := newTestRouter(t, DefaultRouterConfig())
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/connect/m1"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Errorf("status = %d, want 101", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !reg.IsConnected("m1") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !reg.IsConnected("m1") {
		t.Fatal("m1 not registered")
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hi")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil || string(data) != "hi" {
		t.Errorf("echo = %q, %v", data, err)
	}
}
