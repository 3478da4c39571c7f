// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/embedstore-dev/embedstore/internal/config"
)

// NewRootCmd creates the root embedstore command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "embedstore",
		Short:         "embedstore — vector store service",
		Long:          "Embedstore embeds, stores, and queries content through named vector stores, each bound to an embedding model.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newServeCmd(),
		newConfigCmd(),
		newSecretCmd(),
		newVersionCmd(),
	)

	return root
}

// setupLogging installs the process-wide slog handler. Verbose mode enables
// debug-level output.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// configPath resolves the config file to load: the --config flag if set,
// otherwise the default location (bootstrapping a commented default there on
// first run).
func configPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}

	return defaultOrBootstrappedConfig()
}

// defaultOrBootstrappedConfig returns the default config path, writing a
// commented default there on first run. An empty return means no config file
// is available and built-in defaults apply.
func defaultOrBootstrappedConfig() string {
	path, err := config.DefaultConfigPath()
	if err != nil {
		slog.Debug("no config file available, using defaults", "error", err)
		return ""
	}

	if _, err := os.Stat(path); err == nil {
		return path
	}

	return config.BootstrapConfig()
}
