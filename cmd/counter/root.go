package main

import (
	"os"

	"github.com/awantoch/visitorcount/config"
	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	exit       = os.Exit
	configPath string
	debug      bool
)

// NewRootCmd creates the root 'counter' command with persistent flags and subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "counter",
		Short:        constants.DescRoot,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to counter config (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logs")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// Load environment variables from .env file, if present
		_ = godotenv.Load()
		if debug {
			utils.SetMode("debug")
		}
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newVisitCmd(),
		newShowCmd(),
		newMCPCmd(),
	)
	return rootCmd
}

// loadConfig resolves the CLI config. Without a configured connection string
// the CLI keeps its count in a local SQLite file so it survives restarts.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.ConnectionString == "" {
		cfg.Storage.ConnectionString = "sqlite://" + config.DefaultSQLiteDSN
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}
