package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"aerolink/pkg/client"
	"aerolink/pkg/config"
	"aerolink/pkg/facility"
	"aerolink/pkg/facility/facdb"
	"aerolink/pkg/logging"
	"aerolink/pkg/manager"
	"aerolink/pkg/wire"
	"aerolink/pkg/wire/native"
)

var (
	configPath = flag.String("config", "configs/aerolink.yaml", "Path to config file")
	bubble     = flag.Bool("bubble", false, "Sync only facilities inside the reality bubble")
	radius     = flag.Float64("radius", 0, "Search radius in meters for 'near' (0 uses config)")
)

const usage = `Usage:
  facdump sync              Pull airports and VORs from the host into the local database
  facdump near LAT LON      List stored airports near a point, nearest first
  facdump count             Print how many airports the database holds
`

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "facdump: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string) error {
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

	db, err := facdb.Init(cfg.Facility.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open facility database: %w", err)
	}
	defer db.Close()

	switch cmd {
	case "sync":
		return sync(cfg, db)
	case "near":
		return near(cfg, db, args)
	case "count":
		n, err := db.AirportCount()
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// sync connects to the host, enumerates airports and VORs and upserts
// everything once each enumeration completes.
func sync(cfg *config.Config, db *facdb.DB) error {
	path := cfg.Sim.DLLPath
	if path == "" {
		var err error
		if path, err = native.FindDLL(); err != nil {
			return fmt.Errorf("SimConnect library not found, set sim.dll_path in config: %w", err)
		}
	}
	t, err := native.New(path)
	if err != nil {
		return fmt.Errorf("failed to load SimConnect library: %w", err)
	}

	scope := facility.ScopeAll
	if *bubble {
		scope = facility.ScopeBubble
	}

	done := make(chan error, 2)
	mgr := manager.New(t, manager.Options{
		ClientName:           cfg.Sim.ClientName + "-facdump",
		MaxReconnectAttempts: 1,
		OpenHandshakeTimeout: time.Duration(cfg.Sim.OpenHandshakeTimeout),
		MessageCheckInterval: time.Duration(cfg.Sim.MessageCheckInterval),
	})
	mgr.OnConnected(func(c *client.Connection) error {
		fac := facility.New(c.Transport(), c.IDs(), c.Requests())

		var airports []wire.FacilityAirport
		if err := fac.ListAirports(scope, func(a wire.FacilityAirport) {
			airports = append(airports, a)
		}, func(total int) {
			err := db.UpsertAirports(airports)
			slog.Info("airport sync finished", "total", total)
			done <- err
		}); err != nil {
			return fmt.Errorf("failed to list airports: %w", err)
		}

		var vors []wire.FacilityVOR
		if err := fac.ListVORs(scope, func(v wire.FacilityVOR) {
			vors = append(vors, v)
		}, func(total int) {
			err := db.UpsertVORs(vors)
			slog.Info("vor sync finished", "total", total)
			done <- err
		}); err != nil {
			return fmt.Errorf("failed to list vors: %w", err)
		}
		return nil
	})

	if err := mgr.Start(); err != nil {
		return err
	}
	defer mgr.Stop()

	if !mgr.WaitForState(manager.StateConnected, time.Minute) {
		return fmt.Errorf("no simulator connection within %s", time.Minute)
	}

	for finished := 0; finished < 2; finished++ {
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
		case <-time.After(5 * time.Minute):
			return fmt.Errorf("sync timed out")
		}
	}

	n, err := db.AirportCount()
	if err != nil {
		return err
	}
	fmt.Printf("database now holds %d airports\n", n)
	return nil
}

func near(cfg *config.Config, db *facdb.DB, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("near needs LAT and LON arguments")
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("bad latitude %q: %w", args[0], err)
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("bad longitude %q: %w", args[1], err)
	}

	r := *radius
	if r <= 0 {
		r = float64(cfg.Facility.Radius)
	}

	airports, err := db.AirportsNear(lat, lon, r)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(airports) == 0 {
		fmt.Println("no airports in range")
		return nil
	}
	for _, a := range airports {
		fmt.Printf("%-6s %-4s %9.5f %10.5f  alt %6.0f ft  %6.1f km\n",
			a.Ident, a.Region, a.Latitude, a.Longitude, a.Altitude, a.DistanceM/1000)
	}
	return nil
}
