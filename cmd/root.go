package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/featmodel/internal/config"
	"github.com/zjrosen/featmodel/internal/log"
	"github.com/zjrosen/featmodel/internal/tracing"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config

	// cleanups run after every command, last registered first.
	cleanups []func()
)

var rootCmd = &cobra.Command{
	Use:   "featmodel",
	Short: "Inspect, convert and store feature models",
	Long: `featmodel works with feature models: trees of features with group
cardinalities plus propositional cross-tree constraints.

Models are read and written as YAML, DIMACS CNF or FeatureIDE XML, chosen by
file extension or --format.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) { teardown() },
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .featmodel/config.yaml, then ~/.config/featmodel/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (path from log.path or FEATMODEL_LOG)")
}

// setup loads the configuration and starts logging and tracing.
func setup(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(viper.New(), cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	if debugFlag || os.Getenv("FEATMODEL_DEBUG") != "" || cfg.Log.Enabled {
		logPath := os.Getenv("FEATMODEL_LOG")
		if logPath == "" {
			logPath = cfg.Log.Path
		}
		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		cleanups = append(cleanups, cleanup)
		if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
			log.SetMinLevel(level)
		}
		log.Info(log.CatCLI, "featmodel starting", "version", version, "logPath", logPath)
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	cleanups = append(cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "tracing shutdown failed", err)
		}
	})
	return nil
}

func teardown() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// Execute runs the root command
func Execute() error {
	// PersistentPostRun is skipped when a command fails.
	defer teardown()
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
