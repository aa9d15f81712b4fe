package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arzzra/sccp_tester/internal/config"
	"github.com/arzzra/sccp_tester/internal/logging"
)

// app состояние, общее для всех команд
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "sccp-tester",
		Short: "SCCP phone emulator for call manager testing",
		Long: `sccp-tester emulates Cisco SCCP (Skinny) phones and runs scenarios
against a call manager: registration, rejected registration and a
two-party call with RTP exchange.

Examples:
  sccp-tester run register --host 10.0.0.1
  sccp-tester run register-reject SEP000000000099 -c tester.yaml
  sccp-tester run direct-media-off --host cucm.local --metrics
  sccp-tester config --host 10.0.0.1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logger != nil {
				return a.logger.Close()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file path")
	flags.String("host", "", "call manager host name or IPv4 address")
	flags.Int("port", 2000, "call manager SCCP port")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.Duration("timeout", 0, "wait timeout for each scenario step")
	flags.Bool("metrics", false, "expose Prometheus metrics while running")

	bind := map[string]string{
		"server.host":     "host",
		"server.port":     "port",
		"log.level":       "log-level",
		"wait.timeout":    "timeout",
		"metrics.enabled": "metrics",
	}
	for key, name := range bind {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(newRunCmd(a), newConfigCmd(a))
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}
