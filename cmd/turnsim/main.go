package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"turnvoice/pkg/announcement"
	"turnvoice/pkg/config"
	"turnvoice/pkg/db"
	"turnvoice/pkg/db/maintenance"
	"turnvoice/pkg/logging"
	"turnvoice/pkg/probe"
	"turnvoice/pkg/sim"
	"turnvoice/pkg/store"
	"turnvoice/pkg/turns/sound"
	"turnvoice/pkg/version"
)

const defaultConfigPath = "configs/turnvoice.yaml"

var (
	configPath = flag.String("config", defaultConfigPath, "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	unitsFlag  = flag.String("units", "", "Unit system for this run: metric or imperial (persisted)")
	dbFlag     = flag.String("db", "", "Database path (overrides config and environment)")
	routeFlag  = flag.String("route", "", "GeoJSON file with the route LineString (default: built-in demo route)")
	exportFlag = flag.String("export", "", "Write the route with its maneuvers as GeoJSON to this file")
)

// options carries the command line overrides into run.
type options struct {
	ConfigPath string
	Units      string
	DBPath     string
	RoutePath  string
	ExportPath string
	Out        io.Writer
}

func main() {
	flag.Parse()

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, options{
		ConfigPath: *configPath,
		Units:      *unitsFlag,
		DBPath:     *dbFlag,
		RoutePath:  *routeFlag,
		ExportPath: *exportFlag,
		Out:        os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	appCfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.DBPath != "" {
		appCfg.DB.Path = opts.DBPath
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("TurnVoice Started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := maintenance.Run(ctx, st, dbConn, time.Duration(appCfg.DB.Retention)); err != nil {
		slog.Error("Maintenance tasks failed", "error", err)
	}

	r, err := loadRoute(opts.RoutePath)
	if err != nil {
		return err
	}
	slog.Info("Route ready", "length_m", r.Length(), "maneuvers", len(r.Turns()))

	if opts.ExportPath != "" {
		if err := exportRoute(r, opts.ExportPath); err != nil {
			return err
		}
	}

	prov := config.NewProvider(appCfg, st)

	results := probe.Run(ctx, []probe.Probe{
		probe.Database(dbConn),
		probe.Settings(prov),
		probe.Route(r),
	})
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	mgr, err := announcement.NewManager(ctx, prov, announcement.TextSpeaker{W: opts.Out},
		announcement.WithJournal(st),
		announcement.WithStateStore(st),
	)
	if err != nil {
		return err
	}

	if opts.Units != "" {
		unit, err := sound.ParseLengthUnit(opts.Units)
		if err != nil {
			return fmt.Errorf("invalid -units: %w", err)
		}
		if err := mgr.SetUnits(ctx, unit); err != nil {
			return err
		}
	}

	vehicle, err := sim.NewVehicle(r, speedProfile(appCfg.Sim.Speeds))
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	err = sim.Run(ctx, vehicle, prov.SimTick(ctx), prov.SimRealtime(ctx), func(ctx context.Context, f sim.Fix) error {
		_, err := mgr.Tick(ctx, f, r)
		return err
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	if ctx.Err() != nil {
		slog.Info("Simulation interrupted", "state", vehicle.GetState())
		return nil
	}

	count, err := st.CountAnnouncements(ctx, mgr.SessionID())
	if err != nil {
		slog.Warn("Failed to count announcements", "error", err)
	}
	slog.Info("Simulation finished",
		"session", mgr.SessionID(),
		"announcements", count,
		"spoken_total", logging.GlobalAnnouncementCapture.Count(),
		"last", logging.GlobalAnnouncementCapture.GetLastLine(),
	)
	return nil
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

func speedProfile(steps []config.SpeedStep) []sim.SpeedStep {
	out := make([]sim.SpeedStep, len(steps))
	for i, s := range steps {
		out[i] = sim.SpeedStep{From: float64(s.From), SpeedMps: s.Speed}
	}
	return out
}
