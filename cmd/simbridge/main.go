package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"aerolink/internal/bridge"
	"aerolink/pkg/client"
	"aerolink/pkg/config"
	"aerolink/pkg/data"
	"aerolink/pkg/logging"
	"aerolink/pkg/manager"
	"aerolink/pkg/version"
	"aerolink/pkg/wire"
	"aerolink/pkg/wire/native"
)

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", "configs/aerolink.yaml", "Path to config file")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("SimBridge started", "version", version.Version)

	transport, err := openTransport(cfg)
	if err != nil {
		return err
	}

	snap := bridge.NewSnapshot(manager.StateStopped.String())
	hub := bridge.NewHub()
	defer hub.Close()

	mgr, err := buildManager(cfg, transport, snap, hub)
	if err != nil {
		return fmt.Errorf("failed to build connection manager: %w", err)
	}
	if err := mgr.Start(); err != nil {
		return fmt.Errorf("failed to start connection manager: %w", err)
	}
	defer mgr.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	srv := bridge.NewServer(cfg.Bridge.Addr, snap, hub, func() { quit <- syscall.SIGTERM })
	return runServerLifecycle(ctx, srv, quit)
}

func openTransport(cfg *config.Config) (wire.Transport, error) {
	path := cfg.Sim.DLLPath
	if path == "" {
		var err error
		path, err = native.FindDLL()
		if err != nil {
			return nil, fmt.Errorf("SimConnect library not found, set sim.dll_path in config: %w", err)
		}
	}
	t, err := native.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load SimConnect library: %w", err)
	}
	return t, nil
}

// buildManager wires telemetry collection. The data definition and request
// are re-issued on every connect, and each delivery feeds the snapshot and
// the websocket hub.
func buildManager(cfg *config.Config, t wire.Transport, snap *bridge.Snapshot, hub *bridge.Hub) (*manager.Manager, error) {
	def, err := data.DefineFromTags[bridge.Telemetry]()
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry definition: %w", err)
	}

	mgr := manager.New(t, manager.Options{
		ClientName:           cfg.Sim.ClientName,
		DisableAutoConnect:   !cfg.Sim.AutoConnect,
		ReconnectDelay:       time.Duration(cfg.Sim.ReconnectDelay),
		MessageCheckInterval: time.Duration(cfg.Sim.MessageCheckInterval),
		InitialConnectDelay:  time.Duration(cfg.Sim.InitialConnectDelay),
		OpenHandshakeTimeout: time.Duration(cfg.Sim.OpenHandshakeTimeout),
		MaxReconnectAttempts: cfg.Sim.MaxReconnectAttempts,
		ConfigIndex:          cfg.Sim.ConfigIndex,
	})

	mgr.OnStateChange(func(from, to manager.State) {
		slog.Info("connection state changed", "from", from, "to", to)
		snap.SetState(to.String())
		hub.Broadcast(bridge.StateEvent{State: to.String()})
	})
	mgr.OnError(func(code manager.ErrorCode, msg string) {
		slog.Error("connection error", "code", code, "detail", msg)
	})
	mgr.OnConnected(func(c *client.Connection) error {
		d, err := client.Register(c, def)
		if err != nil {
			return fmt.Errorf("failed to register telemetry definition: %w", err)
		}
		opts := client.RequestOptions{Interval: telemetryInterval(cfg)}
		_, err = client.Request(d, wire.ObjectIDUser, wire.PeriodSecond, opts, func(tel *bridge.Telemetry, err error) {
			if err != nil {
				slog.Warn("dropping telemetry frame", "error", err)
				return
			}
			snap.Update(tel)
			hub.Broadcast(tel)
		})
		if err != nil {
			return fmt.Errorf("failed to request telemetry: %w", err)
		}
		return nil
	})
	return mgr, nil
}

// telemetryInterval converts the configured interval into whole seconds
// between deliveries. Zero means every second.
func telemetryInterval(cfg *config.Config) uint32 {
	secs := time.Duration(cfg.Bridge.TelemetryInterval) / time.Second
	if secs <= 1 {
		return 0
	}
	return uint32(secs - 1)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
