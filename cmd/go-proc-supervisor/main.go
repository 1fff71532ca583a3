// Package main provides the go-proc-supervisor entry point.
//
// go-proc-supervisor launches a fixed table of child processes, multiplexes
// their output onto its own stdout and stderr as tagged lines, relays opted-in
// user signals, and tears the whole group down when any child exits or a
// termination request arrives. It always exits non-zero: a supervisor that
// returns at all means the supervised group is gone.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/randomizedcoder/go-proc-supervisor/internal/config"
	"github.com/randomizedcoder/go-proc-supervisor/internal/logging"
	"github.com/randomizedcoder/go-proc-supervisor/internal/metrics"
	"github.com/randomizedcoder/go-proc-supervisor/internal/mux"
	"github.com/randomizedcoder/go-proc-supervisor/internal/preflight"
	"github.com/randomizedcoder/go-proc-supervisor/internal/stats"
	"github.com/randomizedcoder/go-proc-supervisor/internal/supervisor"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/go-proc-supervisor
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// The child table is compiled in; there is nothing to configure on the
	// command line.
	if len(os.Args) > 1 {
		fmt.Fprintf(os.Stderr, "%s: no command line arguments accepted\n", os.Args[0])
		return 1
	}

	cfg := config.Default()

	logger := logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)
	logging.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	if !cfg.SkipPreflight {
		result := preflight.RunAll(cfg)
		fmt.Fprint(os.Stderr, preflight.Render(result))
		if !result.Passed {
			fmt.Fprintln(os.Stderr, "Preflight checks failed.")
			return 1
		}
	}

	logger.Info("starting",
		"version", version,
		"children", len(cfg.Children),
		"shutdown_timeout", cfg.ShutdownTimeout.String(),
		"metrics_addr", cfg.MetricsAddr,
	)

	collector := metrics.NewCollector()
	collector.SetInfo(version)
	collector.SetConfigured(len(cfg.Children))

	if cfg.MetricsAddr != "" {
		server := metrics.NewServer(cfg.MetricsAddr, collector, logger)
		if err := server.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Metrics server error: %v\n", err)
			return 1
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			server.Shutdown(ctx)
		}()
	}

	agg := stats.NewAggregator()

	out := mux.NewWriter(os.Stdout, os.Stderr)
	out.SetLineHook(func(stream mux.Stream, length int) {
		collector.LineFlushed(stream.String(), length)
		agg.RecordLine(length)
	})

	sup := supervisor.New(supervisor.Config{
		Children:        cfg.Children,
		ShutdownTimeout: cfg.ShutdownTimeout,
		MaxLineLength:   cfg.MaxLineLength,
		DrainTimeout:    cfg.DrainTimeout,
		Output:          out,
		Logger:          logger,
		Notify:          true,
		Callbacks: supervisor.Callbacks{
			OnSpawn: func(name string, pid int) {
				collector.ChildSpawned()
				agg.RecordSpawn()
			},
			OnSpawnFailed: func(err error) {
				collector.SpawnFailed()
			},
			OnExit: func(name string, exitCode int, uptime time.Duration, class string) {
				collector.ChildExited(class)
				agg.RecordExit(exitCode, uptime)
				switch class {
				case supervisor.ExitCheckPassed:
					agg.RecordCheck(true)
				case supervisor.ExitCheckFailed:
					agg.RecordCheck(false)
				}
			},
			OnRunning: func(n int) {
				collector.SetRunning(n)
			},
			OnTeardown: func(state supervisor.TeardownState) {
				collector.SetTeardownState(int(state))
			},
			OnForward: func(name, signal string) {
				collector.SignalForwarded(signal)
				agg.RecordForward(signal)
			},
		},
	})

	if err := sup.Run(); err != nil {
		logger.Error("supervisor_failed", "error", err)
	}

	fmt.Println(stats.FormatExitSummary(agg.Snapshot()))

	// The group is gone, whatever the path here was.
	return 1
}
