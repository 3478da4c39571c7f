// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/embedstore-dev/embedstore/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect embedstore configuration",
	}

	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long:  "Resolve configuration from file, environment, and defaults, and print the result with API keys redacted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath(cmd))
			if err != nil {
				return err
			}

			out, err := cfg.YAML()
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
