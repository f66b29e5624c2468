package command

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/pushmesh-go/internal/cli/connection"
	"github.com/yndnr/pushmesh-go/internal/cli/output"
	"github.com/yndnr/pushmesh-go/internal/core/service"
	"github.com/yndnr/pushmesh-go/internal/server/httpserver"
	"github.com/yndnr/pushmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/pushmesh-go/internal/server/wsserver"
	"github.com/yndnr/pushmesh-go/internal/storage/memory"
)

// startRelay runs the real HTTP stack over an in-memory registry.
func startRelay(t *testing.T) (*httptest.Server, *memory.Registry) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg := memory.NewRegistry(memory.WithLogger(log))
	wsCfg := wsserver.DefaultConfig()
	wsCfg.HeartbeatInterval = 100 * time.Millisecond
	wsCfg.ClientTimeout = 2 * time.Second
	ws, err := wsserver.New(wsCfg, reg, wsserver.WithLogger(log))
	if err != nil {
		t.Fatalf("wsserver.New: %v", err)
	}
	svc := service.NewNotifyService(reg, service.NotifyConfig{MaxMessageBytes: 1024}, service.WithLogger(log))

	cfg := httpserver.DefaultRouterConfig()
	cfg.Logger = log
	cfg.Handler = handler.Config{
		NotifyService:   svc,
		Registry:        reg,
		WSServer:        ws,
		MaxMessageBytes: 1024,
		Version:         "test",
	}
	srv := httptest.NewServer(httpserver.NewRouter(cfg))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = ws.Shutdown(ctx)
		srv.Close()
	})
	return srv, reg
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestListen_ReceivesNotifications(t *testing.T) {
	srv, reg := startRelay(t)

	done := make(chan runResult, 1)
	go func() {
		done <- run(t, nil, "--server", srv.URL, "-o", "json", "listen", "--count", "2", "m1")
	}()
	waitFor(t, "m1 registered", func() bool { return reg.IsConnected("m1") })

	for _, msg := range []string{"hello", "world"} {
		if res := run(t, nil, "--server", srv.URL, "notify", "m1", msg); res.err != nil {
			t.Fatalf("notify %q: %v", msg, res.err)
		}
	}

	var res runResult
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("listen did not exit after --count messages")
	}
	if res.err != nil {
		t.Fatalf("listen: %v", res.err)
	}

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2:\n%s", len(lines), res.stdout)
	}
	for i, want := range []string{"hello", "world"} {
		var v frameView
		if err := json.Unmarshal([]byte(lines[i]), &v); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if v.Type != "text" || v.Data != want {
			t.Errorf("line %d = %+v, want text %q", i, v, want)
		}
	}

	waitFor(t, "m1 unregistered", func() bool { return !reg.IsConnected("m1") })
}

func TestListen_DuplicateDestination(t *testing.T) {
	srv, reg := startRelay(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	first, err := connection.NewListener(srv.URL, "m1")
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = first.Listen(ctx, func(connection.Message) {}) }()
	waitFor(t, "m1 registered", func() bool { return reg.IsConnected("m1") })

	res := run(t, nil, "--server", srv.URL, "listen", "m1")
	if res.err == nil || !strings.Contains(res.err.Error(), "PM-CONN-4090") {
		t.Errorf("err = %v, want PM-CONN-4090", res.err)
	}
}

func TestListen_Usage(t *testing.T) {
	res := run(t, nil, "listen")
	if code := exitCode(res.err); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestPrintFrame(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name   string
		format output.Format
		msg    connection.Message
		want   string
	}{
		{"table text", output.FormatTable, connection.Message{Data: []byte("hi"), At: at}, "2026-01-02T03:04:05Z\ttext\thi\n"},
		{"table binary", output.FormatTable, connection.Message{Binary: true, Data: []byte{0xff, 0x00}, At: at}, "2026-01-02T03:04:05Z\tbinary\t/wA=\n"},
		{"json", output.FormatJSON, connection.Message{Data: []byte("hi"), At: at}, `{"time":"2026-01-02T03:04:05Z","type":"text","data":"hi"}` + "\n"},
		{"yaml", output.FormatYAML, connection.Message{Data: []byte("hi"), At: at}, "---\ndata: hi\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := printFrame(&buf, tt.format, tt.msg); err != nil {
				t.Fatalf("printFrame() error = %v", err)
			}
			if !strings.HasPrefix(buf.String(), tt.want) {
				t.Errorf("printFrame() = %q, want prefix %q", buf.String(), tt.want)
			}
		})
	}
}
