package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

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
	configPath = flag.String("config", "configs/aerolink.yaml", "Path to config file")
	once       = flag.Bool("once", false, "Print a single snapshot and exit")
	showTitle  = flag.Bool("title", false, "Include the aircraft title in each line")
)

// watched mirrors the variables printed on each delivery. Built with the
// explicit accessor API so string sizing stays visible.
type watched struct {
	Title     string
	Latitude  float64
	Longitude float64
	Altitude  float64
	Heading   float64
	Airspeed  float64
	OnGround  bool
}

func main() {
	flag.Parse()

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "simwatch: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("simwatch started", "version", version.Version)

	path := cfg.Sim.DLLPath
	if path == "" {
		if path, err = native.FindDLL(); err != nil {
			return fmt.Errorf("SimConnect library not found, set sim.dll_path in config: %w", err)
		}
	}
	t, err := native.New(path)
	if err != nil {
		return fmt.Errorf("failed to load SimConnect library: %w", err)
	}

	def := data.NewDefinition[watched]().
		String("TITLE", 256, func(r *watched) *string { return &r.Title }).
		Float64("PLANE LATITUDE", "Degrees", func(r *watched) *float64 { return &r.Latitude }).
		Float64("PLANE LONGITUDE", "Degrees", func(r *watched) *float64 { return &r.Longitude }).
		Float64("PLANE ALTITUDE", "Feet", func(r *watched) *float64 { return &r.Altitude }).
		Float64("PLANE HEADING DEGREES TRUE", "Degrees", func(r *watched) *float64 { return &r.Heading }).
		Float64("AIRSPEED INDICATED", "Knots", func(r *watched) *float64 { return &r.Airspeed }).
		Bool("SIM ON GROUND", "Bool", func(r *watched) *bool { return &r.OnGround })

	mgr := manager.New(t, manager.Options{
		ClientName:           cfg.Sim.ClientName + "-watch",
		ReconnectDelay:       time.Duration(cfg.Sim.ReconnectDelay),
		MessageCheckInterval: time.Duration(cfg.Sim.MessageCheckInterval),
		OpenHandshakeTimeout: time.Duration(cfg.Sim.OpenHandshakeTimeout),
		MaxReconnectAttempts: cfg.Sim.MaxReconnectAttempts,
		ConfigIndex:          cfg.Sim.ConfigIndex,
	})

	snapshots := make(chan watched, 16)
	mgr.OnConnected(func(c *client.Connection) error {
		host := c.HostInfo()
		fmt.Printf("connected to %s (sim %d.%d)\n",
			host.ApplicationName, host.ApplicationVersion[0], host.ApplicationVersion[1])

		if _, err := c.Events().OnSystemEvent("Pause", func(m *wire.EventMsg) {
			if m.Data == 1 {
				fmt.Println("-- paused --")
			} else {
				fmt.Println("-- unpaused --")
			}
		}); err != nil {
			return fmt.Errorf("failed to subscribe to pause events: %w", err)
		}

		d, err := client.Register(c, def)
		if err != nil {
			return fmt.Errorf("failed to register definition: %w", err)
		}
		deliver := func(rec *watched, err error) {
			if err != nil {
				slog.Warn("dropping frame", "error", err)
				return
			}
			select {
			case snapshots <- *rec:
			default:
			}
		}
		if *once {
			return client.RequestOnce(d, wire.ObjectIDUser, deliver)
		}
		_, err = client.Request(d, wire.ObjectIDUser, wire.PeriodSecond, client.RequestOptions{}, deliver)
		return err
	})
	mgr.OnError(func(code manager.ErrorCode, msg string) {
		slog.Error("connection error", "code", code, "detail", msg)
	})

	if err := mgr.Start(); err != nil {
		return err
	}
	defer mgr.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case rec := <-snapshots:
			printLine(&rec)
			if *once {
				return nil
			}
		case <-quit:
			fmt.Println()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func printLine(rec *watched) {
	ground := "air"
	if rec.OnGround {
		ground = "gnd"
	}
	line := fmt.Sprintf("%9.5f %10.5f  alt %7.0f ft  hdg %03.0f  ias %3.0f kt  [%s]",
		rec.Latitude, rec.Longitude, rec.Altitude, rec.Heading, rec.Airspeed, ground)
	if *showTitle {
		line = rec.Title + "  " + line
	}
	fmt.Println(line)
}
