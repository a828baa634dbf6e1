package main

import (
	"github.com/spf13/cobra"
)

const app = "worker-manager"

// Set at build time.
var version = "dev"

var (
	cfgFile  string
	logLevel string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "worker-manager runs the tender matching engine as Zeebe workers and an HTTP read API",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       version,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is configs/config.yaml plus configs/config.<APP_ENVIRONMENT>.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level from the config")
}
