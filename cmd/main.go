package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/sectorpulse/config"
	"github.com/guttosm/sectorpulse/internal/app"
	"github.com/guttosm/sectorpulse/internal/greeting"
	"github.com/guttosm/sectorpulse/internal/ingestion"
	"github.com/guttosm/sectorpulse/internal/logger"
)

// options are the resolved settings for one invocation: config values
// overridden by any flags given on the command line.
type options struct {
	mode     string
	input    string
	html     string
	list     string
	greetDir string
	snapshot bool
	port     string
}

var errUnknownMode = errors.New("unknown mode")

// parseOptions parses args into options, using cfg for flag defaults.
func parseOptions(args []string, cfg config.Config) (options, error) {
	var o options
	fs := flag.NewFlagSet("sectorpulse", flag.ContinueOnError)
	fs.StringVar(&o.mode, "mode", "build", "Mode: build, greet, all, inspect or api")
	fs.StringVar(&o.input, "input", cfg.Build.InputPath, "Tab-separated listing export")
	fs.StringVar(&o.html, "html", cfg.Build.HTMLPath, "HTML page holding the record array")
	fs.StringVar(&o.list, "list", cfg.Build.ListName, "JavaScript array variable to replace")
	fs.StringVar(&o.greetDir, "greet-dir", cfg.Greeting.Dir, "Directory for the greeting file")
	fs.BoolVar(&o.snapshot, "snapshot", cfg.Build.SnapshotEnabled, "Persist the build to Postgres")
	fs.StringVar(&o.port, "port", cfg.Server.Port, "Port for API mode")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return o, nil
}

// runBuild parses the listing, patches the page and, when enabled, saves a
// snapshot.
func runBuild(ctx context.Context, o options) error {
	var db *sql.DB
	if o.snapshot {
		var err error
		db, err = app.OpenSnapshotStore(ctx, config.AppConfig)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
	}

	_, err := ingestion.Run(ctx, ingestion.Options{InputPath: o.input, HTMLPath: o.html, ListName: o.list}, db)
	return err
}

func runGreet(o options, now time.Time) error {
	path, err := greeting.Write(o.greetDir, now)
	if err != nil {
		return err
	}
	log := logger.With("greet")
	log.Info().Str("path", path).Msg("greeting written")
	return nil
}

// runAll runs the build and the greeting side by side. Neither job cancels
// the other; the first error is returned.
func runAll(ctx context.Context, o options, now time.Time) error {
	var g errgroup.Group
	g.Go(func() error {
		if err := runBuild(ctx, o); err != nil {
			return fmt.Errorf("build: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := runGreet(o, now); err != nil {
			return fmt.Errorf("greet: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// runInspect logs per-sector totals read back from the patched page.
func runInspect(o options) error {
	sums, n, err := ingestion.Inspect(o.html, o.list)
	if err != nil {
		return err
	}
	log := logger.With("inspect")
	for _, s := range sums {
		log.Info().Str("sector_code", s.SectorCode).Int("count", s.Count).Int64("total_market_cap", s.TotalMarketCap).Msg("sector")
	}
	log.Info().Int("records", n).Int("sectors", len(sums)).Msg("inspect done")
	return nil
}

func runAPI(ctx context.Context, o options) error {
	router, cleanup, err := app.InitializeApp(ctx)
	if err != nil {
		return err
	}
	server := startServer(router, o.port)
	gracefulShutdown(ctx, server, cleanup)
	return nil
}

// run dispatches on o.mode.
func run(ctx context.Context, o options) error {
	switch o.mode {
	case "build":
		return runBuild(ctx, o)
	case "greet":
		return runGreet(o, time.Now())
	case "all":
		return runAll(ctx, o, time.Now())
	case "inspect":
		return runInspect(o)
	case "api":
		return runAPI(ctx, o)
	}
	return fmt.Errorf("%w: %q", errUnknownMode, o.mode)
}

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the sectorpulse application.
//
// Modes (selected via --mode flag):
//   - build:   parse the listing export and rewrite the record array in the page.
//   - greet:   write hello_<YYYYMMDDHHMM>.txt.
//   - all:     build and greet concurrently.
//   - inspect: log per-sector totals of an already patched page.
//   - api:     serve the latest snapshot over HTTP.
func main() {
	config.LoadConfig()
	logger.Init(logger.Options{Level: config.AppConfig.Log.Level, Pretty: config.AppConfig.Log.Pretty})

	opts, err := parseOptions(os.Args[1:], config.AppConfig)
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if opts.mode == "api" {
		// gracefulShutdown owns signal handling for the server
		stop()
		ctx = context.Background()
	}
	defer stop()

	if err := run(ctx, opts); err != nil {
		logger.L().Fatal().Err(err).Str("mode", opts.mode).Msg("run failed")
	}
}
