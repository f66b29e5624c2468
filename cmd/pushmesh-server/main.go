package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/pushmesh-go/internal/core/service"
	"github.com/yndnr/pushmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/pushmesh-go/internal/infra/confloader"
	"github.com/yndnr/pushmesh-go/internal/infra/shutdown"
	"github.com/yndnr/pushmesh-go/internal/infra/tlsroots"
	"github.com/yndnr/pushmesh-go/internal/server/config"
	"github.com/yndnr/pushmesh-go/internal/server/httpserver"
	"github.com/yndnr/pushmesh-go/internal/server/wsserver"
	"github.com/yndnr/pushmesh-go/internal/storage/memory"
	"github.com/yndnr/pushmesh-go/internal/telemetry/logger"
	"github.com/yndnr/pushmesh-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("pushmesh-server " + buildinfo.String())
		return nil
	}

	loader, cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(config.ToLoggerConfig(cfg))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting pushmesh-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))
	if cfg.Upstream.Addr != "" {
		log.Info("trusted upstream", "addr", config.RedactURL(cfg.Upstream.Addr))
	}

	metrics := metric.NewRegistry()

	registry := memory.NewRegistry(memory.WithLogger(log))
	if err := metrics.Register(metric.NewCollector(registry)); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}

	notifyCfg, err := config.ToNotifyConfig(cfg)
	if err != nil {
		return err
	}
	notifySvc := service.NewNotifyService(registry, notifyCfg,
		service.WithMetrics(metrics),
		service.WithLogger(log))

	ws, err := wsserver.New(config.ToWSServerConfig(cfg), registry,
		wsserver.WithMetrics(metrics),
		wsserver.WithLogger(log))
	if err != nil {
		return fmt.Errorf("init websocket server: %w", err)
	}

	routerCfg := config.ToRouterConfig(cfg)
	routerCfg.Logger = log
	routerCfg.Metrics = metrics
	routerCfg.Handler.NotifyService = notifySvc
	routerCfg.Handler.Registry = registry
	routerCfg.Handler.WSServer = ws
	routerCfg.Handler.Version = info.Version
	if cfg.Metrics.Enabled {
		routerCfg.Handler.Metrics = metrics.Handler()
	}

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)

	httpCfg := config.ToHTTPServerConfig(cfg)
	if httpCfg.TLSCertFile != "" {
		certs, err := tlsroots.NewCertReloader(httpCfg.TLSCertFile, httpCfg.TLSKeyFile, tlsroots.WithLogger(log))
		if err != nil {
			return fmt.Errorf("load tls certificate: %w", err)
		}
		httpCfg.TLSConfig = certs.ServerConfig()
		go certs.Run()
		shutdownHandler.OnShutdown(func(context.Context) error {
			return certs.Stop()
		})
	}
	httpSrv := httpserver.New(httpCfg, httpserver.NewRouter(routerCfg))

	// Hooks run in reverse order: stop accepting connections, close live
	// sessions, then stop the HTTP listener and the file watchers.
	if *configFile != "" {
		watcher, err := watchConfig(loader, *configFile, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpSrv.Shutdown(ctx)
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("closing websocket sessions", "active", ws.ActiveSessions())
		return ws.Shutdown(ctx)
	})
	shutdownHandler.OnShutdown(func(context.Context) error {
		registry.Close()
		return nil
	})

	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.HTTP.Addr,
			"tls", httpSrv.TLSEnabled())
		if err := httpSrv.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads defaults, the optional file and PUSHMESH_* overrides.
func loadConfig(configFile string) (*confloader.Loader, *config.ServerConfig, error) {
	cfg := config.Default()

	var opts []confloader.Option
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return loader, cfg, nil
}

// watchConfig reloads the config file on change and applies log.level.
// Other settings need a restart.
func watchConfig(loader *confloader.Loader, path string, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		next := config.Default()
		if err := loader.Reload(next); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if err := config.Verify(next); err != nil {
			log.Warn("reloaded config is invalid, keeping current settings", "error", err)
			return
		}
		if err := logger.SetLevel(next.Log.Level); err != nil {
			log.Warn("apply log level", "error", err)
			return
		}
		log.Info("configuration reloaded", "log_level", next.Log.Level)
	})
	watcher.StartAsync()
	return watcher, nil
}
