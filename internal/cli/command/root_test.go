package command

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestApp(t *testing.T) {
	app := App()
	if app.Name != "pushmesh-cli" {
		t.Errorf("Name = %q, want pushmesh-cli", app.Name)
	}

	commands := make(map[string]bool)
	for _, cmd := range app.Commands {
		commands[cmd.Name] = true
	}
	for _, name := range []string{"notify", "connections", "health", "ready", "listen", "config"} {
		if !commands[name] {
			t.Errorf("missing command %q", name)
		}
	}

	flags := make(map[string]bool)
	for _, f := range app.Flags {
		flags[f.Names()[0]] = true
	}
	for _, name := range []string{"server", "output", "wide", "verbose", "timeout", "ca-file", "insecure", "config"} {
		if !flags[name] {
			t.Errorf("missing flag %q", name)
		}
	}
}

func TestGlobalFlags_ServerResolution(t *testing.T) {
	profileSrv := newMockServer(t)
	profileSrv.handle("/health", func(w http.ResponseWriter, r *http.Request) {
		okResponse(w, map[string]any{"status": "healthy", "version": "profile"})
	})
	envSrv := newMockServer(t)
	envSrv.handle("/health", func(w http.ResponseWriter, r *http.Request) {
		okResponse(w, map[string]any{"status": "healthy", "version": "env"})
	})

	cfgPath := filepath.Join(t.TempDir(), "cli.yaml")
	content := "profiles:\n  local:\n    server: " + profileSrv.URL + "\ncurrent_profile: local\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	res := run(t, nil, "--config", cfgPath, "-o", "json", "health")
	if res.err != nil {
		t.Fatalf("health via profile: %v", res.err)
	}
	if !strings.Contains(res.stdout, `"version": "profile"`) {
		t.Errorf("expected profile server, got:\n%s", res.stdout)
	}

	t.Setenv("PUSHMESH_SERVER", envSrv.URL)
	res = run(t, nil, "--config", cfgPath, "-o", "json", "health")
	if res.err != nil {
		t.Fatalf("health via env: %v", res.err)
	}
	if !strings.Contains(res.stdout, `"version": "env"`) {
		t.Errorf("expected env server to override profile, got:\n%s", res.stdout)
	}
}

func TestGlobalFlags_BadOutput(t *testing.T) {
	srv := newMockServer(t)
	res := run(t, nil, "--server", srv.URL, "-o", "xml", "health")
	if res.err == nil || !strings.Contains(res.err.Error(), "unknown output format") {
		t.Errorf("err = %v, want unknown output format", res.err)
	}
}

func TestGlobalFlags_Verbose(t *testing.T) {
	srv := newMockServer(t)
	srv.handle("/health", func(w http.ResponseWriter, r *http.Request) {
		okResponse(w, map[string]any{"status": "healthy"})
	})

	res := run(t, nil, "--server", srv.URL, "-V", "health")
	if res.err != nil {
		t.Fatalf("health: %v", res.err)
	}
	if !strings.Contains(res.stderr, "server: "+srv.URL) {
		t.Errorf("stderr = %q, want server line", res.stderr)
	}
}

func TestApp_BadCLIConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(cfgPath, []byte("current_profile: missing\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	res := run(t, nil, "--config", cfgPath, "health")
	if res.err == nil || !strings.Contains(res.err.Error(), "not defined") {
		t.Errorf("err = %v, want undefined profile error", res.err)
	}
}

func TestGlobalFlags_TLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		okResponse(w, map[string]any{"status": "healthy"})
	}))
	defer srv.Close()

	if res := run(t, nil, "--server", srv.URL, "health"); res.err == nil {
		t.Error("expected certificate error without --insecure")
	}
	if res := run(t, nil, "--server", srv.URL, "--insecure", "health"); res.err != nil {
		t.Errorf("health --insecure: %v", res.err)
	}
	res := run(t, nil, "--server", srv.URL, "--ca-file", filepath.Join(t.TempDir(), "missing.pem"), "health")
	if res.err == nil || !strings.Contains(res.err.Error(), "ca file") {
		t.Errorf("err = %v, want ca file error", res.err)
	}
}
