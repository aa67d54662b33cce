package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sparkbench/airplane-sim/internal/bench"
	"github.com/sparkbench/airplane-sim/internal/config"
	"github.com/sparkbench/airplane-sim/internal/sim"
	"github.com/sparkbench/airplane-sim/internal/state"
	"github.com/sparkbench/airplane-sim/internal/telemetry"
)

var endpointURL string

func main() {
	rootCmd := &cobra.Command{
		Use:          "airplane-sim",
		Short:        "hardware-in-the-loop airplane simulator for the SparkBench autothrottle",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run()
		},
	}
	rootCmd.Flags().StringVar(&endpointURL, "url", "", "SparkBench WebSocket URL (default ws://localhost:8765)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if endpointURL != "" {
		cfg.Bench.URL = endpointURL
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reporter := telemetry.NewReporter(os.Stdout)
	client := bench.NewClient(bench.Config{
		URL:              cfg.Bench.URL,
		HandshakeTimeout: cfg.Bench.HandshakeTimeout,
	}, logger)

	logger.Info("connecting to bench", zap.String("url", cfg.Bench.URL))
	if err := client.Connect(ctx); err != nil {
		reporter.Errorf("Failed to connect to SparkBench API at %s", cfg.Bench.URL)
		reporter.Errorf("Make sure the API server is running:")
		reporter.Errorf("  npm run sparkbench -- serve autothrottle")
		return err
	}
	defer func() { _ = client.Close() }()

	reporter.Banner(client.Session(), cfg.Aircraft, cfg.Sim.AltitudeFt)

	aircraft := state.New()
	clock := sim.NewClock(client, aircraft, cfg.Aircraft, reporter, sim.Config{
		TickInterval: cfg.Sim.TickInterval,
		EveryNTicks:  cfg.Sim.TelemetryEvery,
		PitotPartID:  cfg.Sim.PitotPartID,
		StaticPartID: cfg.Sim.StaticPartID,
	}, logger)

	err = clock.Run(ctx)

	// Shutdown path: tear the connection down first, then leave the
	// operator the airspeed history.
	_ = client.Close()
	reporter.Trace()

	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down airplane sim")
		return nil
	}
	return err
}
