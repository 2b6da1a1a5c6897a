package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surveyhub/internal/config"
	"surveyhub/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "surveyctl",
	Short:         "Operate the survey response store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the surveyctl version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults to $"+config.EnvConfigPath+")")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// setup loads the configuration and builds the logger shared by subcommands
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

// errInvalid marks a command that ran but found problems
var errInvalid = errors.New("validation failed")

func exitCode(err error) int {
	if errors.Is(err, errInvalid) {
		return 2
	}
	return 1
}
