package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arzzra/sccp_tester/pkg/device"
	"github.com/arzzra/sccp_tester/pkg/metrics"
	"github.com/arzzra/sccp_tester/pkg/scenario"
)

func newRunCmd(a *app) *cobra.Command {
	run := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario against the call manager",
	}
	run.AddCommand(
		&cobra.Command{
			Use:   scenario.NameRegister,
			Short: "Connect and register every configured device",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runScenario(cmd, scenario.NameRegister)
			},
		},
		&cobra.Command{
			Use:   scenario.NameRegisterReject + " [device-name]",
			Short: "Register a device the call manager must reject",
			Long: `Register a single device and expect exactly one registration
failure. Without an argument the first configured device is used.`,
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runScenario(cmd, scenario.NameRegisterReject, args...)
			},
		},
		&cobra.Command{
			Use:   scenario.NameDirectMediaOff,
			Short: "Call from the first device to extension 02 and exchange RTP",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runScenario(cmd, scenario.NameDirectMediaOff)
			},
		},
	)
	return run
}

func (a *app) scenarioConfig() scenario.Config {
	cfg := scenario.Config{
		Host:       a.cfg.Server.Host,
		Port:       uint16(a.cfg.Server.Port),
		Timeout:    a.cfg.Wait.Timeout,
		BufferSize: a.cfg.Events.BufferSize,
	}
	for _, name := range a.cfg.Devices.Names {
		cfg.Devices = append(cfg.Devices, device.DeviceInfo{
			Name:         name,
			Type:         a.cfg.Devices.Type,
			ProtoVersion: a.cfg.Devices.ProtoVersion,
		})
	}
	return cfg
}

func (a *app) runScenario(cmd *cobra.Command, name string, args ...string) error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []scenario.Option{scenario.WithLogger(a.logger)}
	if a.cfg.Metrics.Enabled {
		collector := metrics.NewCollector()
		srv := metrics.NewServer(a.cfg.Metrics.Listen, a.cfg.Metrics.Path, collector, a.logger)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := srv.Stop(context.Background()); err != nil {
				a.logger.WithError(err).Warn("stop metrics server")
			}
		}()
		opts = append(opts, scenario.WithMetrics(collector))
	}

	res, err := scenario.NewRunner(a.scenarioConfig(), opts...).Run(ctx, name, args...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: passed in %s (run %s)\n", res.Scenario, res.Duration, res.RunID)
	return nil
}
